package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ai-medical-chat-be/internal/constant"
	"ai-medical-chat-be/internal/repository/unitofwork"
	"ai-medical-chat-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	sessionFlag := flag.String("session", "", "chat session id to inspect")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	sessionId, err := uuid.Parse(*sessionFlag)
	if err != nil {
		log.Fatalf("Error: -session must be a uuid, got %q", *sessionFlag)
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx)

	chatSession, err := uow.ChatSessionRepository().FindByID(ctx, sessionId)
	if err != nil {
		log.Fatal("Error: Failed to load session:", err)
	}
	if chatSession == nil {
		color.Red("Session %s not found", sessionId)
		os.Exit(1)
	}

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, sessionId)
	if err != nil {
		log.Fatal("Error: Failed to load messages:", err)
	}

	stored, err := uow.ChatMessageRepository().CountBySession(ctx, sessionId)
	if err != nil {
		log.Fatal("Error: Failed to count messages:", err)
	}

	owner, err := uow.UserRepository().FindByID(ctx, chatSession.UserId)
	if err != nil {
		log.Fatal("Error: Failed to load owner:", err)
	}
	ownerLabel := chatSession.UserId.String()
	if owner != nil {
		ownerLabel = owner.Email
	} else {
		color.Red("Owner %s no longer exists", chatSession.UserId)
	}

	color.Cyan("Session %s %q", chatSession.Id, chatSession.Title)
	if stored != chatSession.MessageCount {
		color.Red("Counter says %d messages but %d are stored", chatSession.MessageCount, stored)
	}
	fmt.Printf("Owner: %s  Messages: %d  Created: %s\n\n", ownerLabel, chatSession.MessageCount, chatSession.CreatedAt.Format("2006-01-02 15:04:05"))

	for _, m := range messages {
		line := fmt.Sprintf("#%d %s %s: %s", m.Seq, m.CreatedAt.Format("15:04:05.000"), m.Role, m.Content)
		if m.Role == constant.ChatMessageRoleUser {
			color.Yellow("%s", line)
		} else {
			color.Green("%s", line)
		}
	}
	if len(messages) == 0 {
		color.Yellow("(no messages)")
	}
}
