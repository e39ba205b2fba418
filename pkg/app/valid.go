package app

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/pkg/errors"
)

// ValidError 单个字段的校验错误
type ValidError struct {
	Key     string
	Message string
}

type ValidErrors []*ValidError

func (v *ValidError) Error() string {
	return v.Message
}

func (v ValidErrors) Error() string {
	return strings.Join(v.Errors(), ",")
}

func (v ValidErrors) Errors() []string {
	var errs []string
	for _, err := range v {
		errs = append(errs, err.Error())
	}
	return errs
}

// MapsToString 以字段名为键返回错误消息
func (v ValidErrors) MapsToString() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		out[err.Key] = err.Message
	}
	return out
}

// Validator 带多语言翻译的校验器
type Validator struct {
	Validate *validator.Validate
	Uni      *ut.UniversalTranslator
}

// NewValidator 创建校验器并注册 en / zh 翻译
func NewValidator() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	uni := ut.New(en.New(), en.New(), zh.New())

	enTrans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return nil, errors.Wrap(err, "register en translations")
	}
	zhTrans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(v, zhTrans); err != nil {
		return nil, errors.Wrap(err, "register zh translations")
	}
	return &Validator{Validate: v, Uni: uni}, nil
}

// Translator 按语言取翻译器，未知语言回退英文
func (v *Validator) Translator(lang string) ut.Translator {
	lang = strings.ToLower(strings.ReplaceAll(lang, "-", "_"))
	if i := strings.Index(lang, "_"); i > 0 {
		lang = lang[:i]
	}
	if trans, found := v.Uni.GetTranslator(lang); found {
		return trans
	}
	trans, _ := v.Uni.GetTranslator("en")
	return trans
}

// Struct 校验结构体，返回翻译后的错误
func (v *Validator) Struct(obj any, lang string) ValidErrors {
	err := v.Validate.Struct(obj)
	if err == nil {
		return nil
	}
	var errs ValidErrors
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		trans := v.Translator(lang)
		for _, fe := range verrs {
			errs = append(errs, &ValidError{Key: fe.Field(), Message: fe.Translate(trans)})
		}
		return errs
	}
	return ValidErrors{{Key: "body", Message: err.Error()}}
}

// BindAndValid 绑定请求参数并校验，语言取自 lang 查询参数或请求头
func (v *Validator) BindAndValid(c *gin.Context, obj any) (bool, ValidErrors) {
	if err := c.ShouldBind(obj); err != nil {
		return false, ValidErrors{{Key: "body", Message: err.Error()}}
	}
	lang := c.Query("lang")
	if lang == "" {
		lang = c.GetHeader("lang")
	}
	if errs := v.Struct(obj, lang); len(errs) > 0 {
		return false, errs
	}
	return true, nil
}
