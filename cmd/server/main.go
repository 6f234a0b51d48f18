package main

import (
	"log"

	"funquizz/config"
	"funquizz/internal/api"
	"funquizz/internal/auth"
	"funquizz/internal/cache"
	"funquizz/internal/database"
	"funquizz/internal/flashcard"
	"funquizz/internal/flashcardset"
	"funquizz/internal/mailer"
	"funquizz/internal/otp"
	"funquizz/internal/token"
	"funquizz/internal/user"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(&user.User{}, &flashcardset.FlashcardSet{}, &flashcard.Flashcard{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	sender := mailer.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)

	userRepo := user.NewRepository(db)
	otpService := otp.NewService(redisCache, cfg.OTPExpiry)
	tokenService := token.NewService(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpires, redisCache)
	authService := auth.NewService(userRepo, otpService, tokenService, sender)
	authHandler := auth.NewHandler(authService)

	setRepo := flashcardset.NewRepository(db)
	accessControl := flashcardset.NewAccessControl(redisCache)
	setService := flashcardset.NewService(setRepo, accessControl)
	setHandler := flashcardset.NewHandler(setService)

	cardRepo := flashcard.NewRepository(db)
	cardService := flashcard.NewService(cardRepo, setService)
	cardHandler := flashcard.NewHandler(cardService)

	server := api.NewServer(authHandler, setHandler, cardHandler, cfg.RateLimitRPS)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := server.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to serve: %v", err)
	}
}
