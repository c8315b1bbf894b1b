package database

import (
	"fmt"
	"log"
	"writequest_app/internal/config"
	"writequest_app/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 建立连接。runMigrations 为真时执行 AutoMigrate，
// release 模式下迁移默认关闭，需 -migrate 参数显式开启。
func InitDB(cfg *config.DatabaseConfig, runMigrations bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !runMigrations {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.PairingSession{},
		&model.EditorSaveLog{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}
