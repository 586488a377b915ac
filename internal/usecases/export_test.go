package usecases

import (
	"context"
	"time"
)

// Test hooks for the external test package.

func SetOTPGenerator(f func() (string, error)) (restore func()) {
	old := generateOTP
	generateOTP = f
	return func() { generateOTP = old }
}

func SetSessionIDGenerator(f func() (string, error)) (restore func()) {
	old := newSessionID
	newSessionID = f
	return func() { newSessionID = old }
}

func SetPasswordHasher(f func(string) (string, error)) (restore func()) {
	old := hashPassword
	hashPassword = f
	return func() { hashPassword = old }
}

func SetSleep(f func(context.Context, time.Duration) error) (restore func()) {
	old := sleepCtx
	sleepCtx = f
	return func() { sleepCtx = old }
}

func (u *AuthUsecase) SetClock(now func() time.Time)        { u.now = now }
func (u *ChatUsecase) SetClock(now func() time.Time)        { u.now = now }
func (u *InventoryUsecase) SetClock(now func() time.Time)   { u.now = now }
func (u *MaintenanceUsecase) SetClock(now func() time.Time) { u.now = now }
func (u *AdminUsecase) SetClock(now func() time.Time)       { u.now = now }
