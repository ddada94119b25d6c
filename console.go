// Package console Firsthash影楼管理控制台的客户端核心
// 组件按页面生命周期装配：加载配置→建网关→首次全量拉取→(可选)定时刷新
package console

import (
	"log"
	"time"

	"github.com/spf13/viper"

	"github.com/firsthash/console/api"
	"github.com/firsthash/console/config"
	"github.com/firsthash/console/logger"
	"github.com/firsthash/console/store"
)

func init() {
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	viper.SetConfigType("ini")
	viper.SetConfigName("config")
	viper.AddConfigPath("./etc/")
	if err := viper.ReadInConfig(); err != nil {
		log.Println("read config", err.Error())
	}
}

// App 控制台应用
type App interface {
	Run() error
	Store() *store.Store
	Close()
}

type app struct {
	store *store.Store
}

// NewApp 装配网关与状态存储，tokens为外部身份源(每次请求现取token)
func NewApp(tokens api.TokenSource, opts store.Options) App {
	config.MustLoad()
	config.PrintWithJSON()
	logger.Init()

	cli := api.NewClient(tokens, api.Config{
		Schema:  config.C.API.Schema,
		Host:    config.C.API.Host,
		Prefix:  config.C.API.Prefix,
		Timeout: time.Duration(config.C.API.Timeout) * time.Second,
	})
	return &app{store: store.New(cli, opts)}
}

// Run 首次全量拉取并按配置启动定时刷新
func (a *app) Run() error {
	if err := a.store.Refresh(); err != nil {
		return err
	}
	return a.store.StartAutoRefresh(config.C.Refresh.Spec)
}

// Store 状态存储
func (a *app) Store() *store.Store {
	return a.store
}

// Close 停止定时刷新，页面内存状态随进程丢弃
func (a *app) Close() {
	a.store.StopAutoRefresh()
}
