package util

import (
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID 获取当前机器的唯一标识（按应用名做 HMAC 保护）
// machineid 失败时回退到主机名，全部失败返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID("noteapp"); err == nil && id != "" {
			machineID = id
			return
		}
		if host, err := os.Hostname(); err == nil {
			machineID = host
		}
	})
	return machineID
}
