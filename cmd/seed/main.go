package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"ai-medical-chat-be/internal/entity"
	"ai-medical-chat-be/internal/repository/contract"
	"ai-medical-chat-be/internal/repository/unitofwork"
	"ai-medical-chat-be/pkg/auth"
	"ai-medical-chat-be/pkg/chat/session"
	"ai-medical-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds a demo account with one empty chat session.
func main() {
	email := flag.String("email", "demo@example.com", "account email")
	password := flag.String("password", "demo1234", "account password")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	factory := unitofwork.NewRepositoryFactory(db)
	users := factory.NewUnitOfWork(ctx).UserRepository()

	hash, err := auth.NewPasswordHasher(bcrypt.DefaultCost).Hash(*password)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	user := &entity.User{Id: uuid.New(), Email: *email, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	switch err := users.Create(ctx, user); {
	case errors.Is(err, contract.ErrDuplicateEmail):
		log.Printf("User %s already exists, reusing it", *email)
		if user, err = users.FindByEmail(ctx, *email); err != nil || user == nil {
			log.Fatalf("Error: Failed to load %s: %v", *email, err)
		}
	case err != nil:
		log.Fatalf("Error: Failed to create user: %v", err)
	default:
		log.Printf("Created user %s (%s)", user.Email, user.Id)
	}

	chatSession, err := session.NewRegistry(factory).Create(ctx, user.Id)
	if err != nil {
		log.Fatalf("Error: Failed to create session: %v", err)
	}
	log.Printf("Created session %s", chatSession.Id)

	if total, err := users.Count(ctx); err == nil {
		log.Printf("%d users in store", total)
	}
}
