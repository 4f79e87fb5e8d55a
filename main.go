package main

import (
	"log"

	"github.com/xinyucaoo/influenceBay-sub000/config"
	"github.com/xinyucaoo/influenceBay-sub000/middleware"
	"github.com/xinyucaoo/influenceBay-sub000/models"
	"github.com/xinyucaoo/influenceBay-sub000/routes"
	"github.com/xinyucaoo/influenceBay-sub000/websocket"

	"github.com/joho/godotenv"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	env := config.GetEnv("GIN_MODE", "debug")

	// 初始化日志系统
	if err := middleware.InitLogger(env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer middleware.FlushLogger()

	// 初始化数据库
	if err := config.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer config.CloseDatabase()

	// 自动迁移表结构
	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Offer{},
		&models.Campaign{},
		&models.Application{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化Redis（允许降级运行）
	if config.GetServerConfig().RedisEnabled {
		if err := config.InitializeRedis(); err != nil {
			log.Printf("⚠️  Warning: Redis initialization failed: %v", err)
			log.Println("Continuing without Redis caching...")
			config.RedisClient = nil
		}
	}
	defer config.CloseRedis()

	// 初始化WebSocket
	if err := websocket.InitWebSocket(); err != nil {
		log.Fatalf("Failed to initialize WebSocket: %v", err)
	}
	defer websocket.CloseWebSocket()

	// 设置路由
	r := config.SetupRouter()
	routes.SetupRoutes(r)

	if err := config.StartServer(r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
