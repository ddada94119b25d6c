package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ROLESPARSEERROR     = "解析成员角色字段失败: %s"
	ASSIGNEERESOLVEWARN = "任务负责人未解析到成员: %s"
	ROLLBACKWARN        = "乐观更新失败，已回滚: %s"
	REFRESHERROR        = "集合自动刷新失败: %s"
	UPLOADERROR         = "附件上传失败: %s"
)

func Init() {
	var tmpLogLevel = viper.GetString("log.level")
	var file = viper.GetString("log.file")
	l, err := logrus.ParseLevel(tmpLogLevel)
	if err != nil {
		l = logrus.ErrorLevel
	}
	if file != "" {
		err := os.MkdirAll("logs", 0755)
		if err != nil {
			panic(fmt.Sprintf("log dir: %s", err.Error()))
		}
		f, err := os.OpenFile("logs/"+file, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0666)
		if err != nil {
			panic(fmt.Sprintf("log: %s", err.Error()))
		}
		logrus.SetOutput(f)
	} else {
		logrus.SetOutput(os.Stdout)
	}
	logrus.SetLevel(l)
}

// Debugf 调试输出
func Debugf(fields map[string]interface{}, format string, args ...interface{}) {
	if fields == nil {
		logrus.Debugf(format, args...)
	} else {
		logrus.WithFields(fields).Debugf(format, args...)
	}
}

// Infof 信息输出
func Infof(fields map[string]interface{}, format string, args ...interface{}) {
	if fields == nil {
		logrus.Infof(format, args...)
	} else {
		logrus.WithFields(fields).Infof(format, args...)
	}
}

// Warnf 警告输出
func Warnf(fields map[string]interface{}, format string, args ...interface{}) {
	if fields == nil {
		logrus.Warnf(format, args...)
	} else {
		logrus.WithFields(fields).Warnf(format, args...)
	}
}

// Errorf 错误输出
func Errorf(fields map[string]interface{}, format string, args ...interface{}) {
	if fields == nil {
		logrus.Errorf(format, args...)
	} else {
		logrus.WithFields(fields).Errorf(format, args...)
	}
}
