package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"psi-tracker/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct{ db *gorm.DB }

func NewAuthService(db *gorm.DB) *AuthService { return &AuthService{db: db} }

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.Psychologist, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Psychologist{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("query psychologist: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	p := model.Psychologist{Name: strings.TrimSpace(req.Name), Email: email, Password: string(hash), CRP: req.CRP}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("insert psychologist: %w", err)
	}
	return &p, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.Psychologist, error) {
	var p model.Psychologist
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query psychologist: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &p, nil
}

// PatientLogin resolves a patient by access code. Codes are case-insensitive.
func (s *AuthService) PatientLogin(ctx context.Context, code string) (*model.Patient, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCredentials
	}
	var p model.Patient
	err := s.db.WithContext(ctx).Where("access_code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("query patient: %w", err)
	}
	return &p, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
