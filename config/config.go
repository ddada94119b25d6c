package config

import (
	"log"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/firsthash/console/util/json"
)

var (
	// C 全局配置(需要先执行MustLoad，否则拿不到配置)
	C    = new(Config)
	once sync.Once
)

// MustLoad 加载配置
func MustLoad(fpaths ...string) {
	once.Do(func() {
		viper.SetConfigType("env")
		viper.AutomaticEnv()

		for _, fpath := range fpaths {
			dir, file := path.Split(fpath)
			index := strings.LastIndex(file, ".")
			viper.SetConfigName(file[:index])
			viper.SetConfigType(file[index+1:])
			viper.AddConfigPath(dir)
		}
		if len(fpaths) > 0 {
			if err := viper.ReadInConfig(); err != nil {
				log.Fatalln("Fatal error config file: ", err.Error())
			}
		}
		if err := viper.Unmarshal(C); err != nil {
			log.Fatalln("unable to decode into struct: ", err.Error())
		}
	})
}

// PrintWithJSON 基于JSON格式输出配置
func PrintWithJSON() {
	if C.PrintConfig {
		b, err := json.MarshalIndent(C, "", " ")
		if err != nil {
			os.Stdout.WriteString("[CONFIG] JSON marshal error: " + err.Error())
			return
		}
		os.Stdout.WriteString(string(b) + "\n")
	}
}

// Config 配置参数
type Config struct {
	PrintConfig bool
	API         API
	Log         Log
	Refresh     Refresh
	Theme       Theme
}

// API 后端接口配置
type API struct {
	Schema  string
	Host    string
	Prefix  string
	Timeout int // 秒，0为默认60秒
}

// Log 日志配置参数
type Log struct {
	Level string
	File  string
}

// Refresh 集合自动刷新配置，Spec为cron表达式，为空不启用
type Refresh struct {
	Spec string
}

// Theme 主题偏好，对应浏览器本地存储的theme键
type Theme struct {
	Preference string
}

// IsDark 是否暗色主题
func (t Theme) IsDark() bool {
	return t.Preference == "dark"
}
