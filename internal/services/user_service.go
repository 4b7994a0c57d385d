package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"crm-backend/internal/auth"
	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/storage"
)

// InvalidCredentialsMessage is returned for both unknown emails and wrong
// passwords.
const InvalidCredentialsMessage = "Invalid email or password."

type SignupInput struct {
	Email          string  `json:"email" validate:"required"`
	Password       string  `json:"password" validate:"required"`
	FirstName      string  `json:"firstName" validate:"required"`
	LastName       string  `json:"lastName" validate:"required"`
	ProfilePicture *string `json:"profilePicture"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Ack is the body returned by operations that produce no record.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type UserService struct {
	users    database.Table[models.User]
	issuer   *auth.Issuer
	uploader storage.Uploader
	now      func() time.Time
	newID    func() string
}

func NewUserService(users database.Table[models.User], issuer *auth.Issuer, uploader storage.Uploader) *UserService {
	return &UserService{
		users:    users,
		issuer:   issuer,
		uploader: uploader,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Signup stores a new user. The email is claimed with a conditional insert,
// so two concurrent signups for one address cannot both succeed.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (*Ack, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if strings.TrimSpace(input.Password) == "" {
		input.Password = ""
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if len(input.Password) > auth.MaxPasswordBytes {
		detail := fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes)
		return nil, validationError(detail, detail)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		UserID:         s.newID(),
		Email:          input.Email,
		PasswordHash:   hash,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		ProfilePicture: trimmedOrNil(input.ProfilePicture),
		CreatedAt:      s.now().UTC(),
	}

	if err := s.users.Insert(ctx, user.UserID, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			log.Println("[AUTH] [ERROR] signup email exists:", user.Email)
			return nil, &Error{Kind: KindConflict, Message: "User with this email already exists.", Err: err}
		}
		log.Println("[AUTH] [ERROR] signup insert failed:", err)
		return nil, storeError(err, "User not found.")
	}

	log.Println("[AUTH] [INFO] user registered:", user.Email)
	return &Ack{Success: true, Message: "User created successfully!"}, nil
}

// Login verifies credentials and returns a signed token.
func (s *UserService) Login(ctx context.Context, input LoginInput) (string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if strings.TrimSpace(input.Password) == "" {
		input.Password = ""
	}
	if err := validateInput(input); err != nil {
		return "", err
	}

	unauthorized := &Error{Kind: KindUnauthorized, Message: InvalidCredentialsMessage}

	user, err := s.users.FindOne(ctx, "email", input.Email)
	if errors.Is(err, database.ErrNotFound) {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return "", unauthorized
	}
	if err != nil {
		log.Println("[AUTH] [ERROR] login user lookup failed:", err)
		return "", storeError(err, InvalidCredentialsMessage)
	}

	if !auth.CheckPassword(input.Password, user.PasswordHash) {
		log.Println("[AUTH] [ERROR] login invalid credentials")
		return "", unauthorized
	}

	token, err := s.issuer.Issue(user.UserID)
	if err != nil {
		log.Println("[AUTH] [ERROR] login token generation failed:", err)
		return "", fmt.Errorf("issue token: %w", err)
	}

	log.Println("[AUTH] [INFO] user login succeeded:", user.Email)
	return token, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.Scan(ctx)
	if err != nil {
		log.Println("[USER] [ERROR] list failed:", err)
		return nil, storeError(err, "User not found.")
	}
	sortByCreatedAt(users, func(u *models.User) time.Time { return u.CreatedAt })
	return users, nil
}

// SetProfilePicture uploads a data-URL image and stores its public URL on the user.
func (s *UserService) SetProfilePicture(ctx context.Context, id, dataURL string) (string, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return "", err
	}

	url, err := uploadProfilePicture(ctx, s.uploader, storage.EntityUsers, id, dataURL)
	if err != nil {
		log.Println("[USER] [ERROR] profile picture upload failed:", err)
		return "", err
	}

	if err := s.users.UpdateFields(ctx, id, map[string]any{"profilePicture": url}); err != nil {
		log.Println("[USER] [ERROR] profile picture update failed:", err)
		return "", storeError(err, "User not found.")
	}

	log.Println("[USER] [INFO] profile picture updated:", id)
	return url, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
