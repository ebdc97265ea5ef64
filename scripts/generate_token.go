package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/your-org/seller-dashboard-backend/internal/config"
	"github.com/your-org/seller-dashboard-backend/internal/pkg/auth"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run scripts/generate_token.go <seller_id> <user_id> [email]")
	}

	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading configuration:", err)
	}

	sellerID, err := strconv.ParseUint(os.Args[1], 10, 32)
	if err != nil {
		log.Fatal("Invalid seller ID:", err)
	}
	userID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatal("Invalid user ID:", err)
	}
	email := "dev@example.com"
	if len(os.Args) > 3 {
		email = os.Args[3]
	}

	manager := auth.NewJWTManager(cfg)
	token, err := manager.GenerateToken(uint(sellerID), uint(userID), email)
	if err != nil {
		log.Fatal("Error generating token:", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		log.Fatal("Token verification failed:", err)
	}

	fmt.Printf("Seller ID: %d\n", claims.SellerID)
	fmt.Printf("User ID: %d\n", claims.UserID)
	fmt.Printf("Token: %s\n", token)

	fmt.Println("✅ Token verified successfully!")
}
