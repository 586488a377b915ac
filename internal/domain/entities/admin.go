package entities

import (
	"time"

	"github.com/google/uuid"
)

// AdminSetupInput bootstraps the first admin account
type AdminSetupInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	SecretKey string `json:"secretKey" binding:"required"`
}

// SetAdminInput promotes or demotes a user
type SetAdminInput struct {
	Email   string `json:"email" binding:"required,email"`
	IsAdmin *bool  `json:"isAdmin" binding:"required"`
}

// AdminSetupName is the display name given to the bootstrap admin.
const AdminSetupName = "Super Admin"

// AdminCheck reports the caller's admin flag
type AdminCheck struct {
	IsAdmin bool   `json:"isAdmin"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

type StatsTotals struct {
	Users         int64 `json:"users"`
	VerifiedUsers int64 `json:"verifiedUsers"`
	Chats         int64 `json:"chats"`
	Messages      int64 `json:"messages"`
	OilChanges    int64 `json:"oilChanges"`
	CarParts      int64 `json:"carParts"`
	InStockParts  int64 `json:"inStockParts"`
}

type StatsAverages struct {
	MessagesPerChat float64 `json:"messagesPerChat"`
}

type StatsRecent struct {
	NewUsersThisWeek int64 `json:"newUsersThisWeek"`
	NewChatsThisWeek int64 `json:"newChatsThisWeek"`
}

type RecentUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Verified  bool      `json:"verified"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type RecentChat struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	UserEmail    string    `json:"userEmail"`
	MessageCount int64     `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CarModelCount struct {
	CarModel string `json:"carModel"`
	Count    int64  `json:"count"`
}

// AdminStats is the admin dashboard payload
type AdminStats struct {
	Totals           StatsTotals     `json:"totals"`
	Averages         StatsAverages   `json:"averages"`
	Recent           StatsRecent     `json:"recent"`
	RecentUsers      []RecentUser    `json:"recentUsers"`
	RecentChats      []RecentChat    `json:"recentChats"`
	PopularCarModels []CarModelCount `json:"popularCarModels"`
}
