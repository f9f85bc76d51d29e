package main

import (
	"flag"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"cryptograph/conf"
	"cryptograph/internal/api"
	"cryptograph/pkg/cache"
	"cryptograph/pkg/db"
	"cryptograph/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "c", "config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置文件
	if err := conf.LoadConfig(configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyEnvOverrides(&conf.AppConfig)

	logger.InitLogger(&conf.AppConfig.Log, conf.AppConfig.AppName)
	defer logger.Sync()

	dbCfg := db.NewConfig(
		conf.AppConfig.Db.Username,
		conf.AppConfig.Db.Password,
		conf.AppConfig.Db.Host,
		conf.AppConfig.Db.Port,
		conf.AppConfig.Db.DbName,
	)
	if conf.AppConfig.Db.SSLMode != "" {
		dbCfg.SSLMode = conf.AppConfig.Db.SSLMode
	}
	gdb := db.Init(dbCfg)

	var rdb *redis.Client
	if conf.AppConfig.Redis.Addr != "" {
		cache.InitRedis(conf.AppConfig.Redis)
		rdb = cache.GetRedisClient()
		defer cache.CloseRedis()
	}

	apiRouter, eng, cleanup := api.InitApp(gdb, rdb)
	defer cleanup()

	// 后台止损引擎和HTTP服务各自独立，引擎先起
	eng.Start()
	defer eng.Stop()

	server := api.NewServer(&conf.AppConfig)
	server.Run(apiRouter)
}

// applyEnvOverrides 容器部署时用环境变量覆盖数据库连接信息
func applyEnvOverrides(c *conf.Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Db.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		c.Db.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		c.Db.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Db.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		c.Db.DbName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
}
