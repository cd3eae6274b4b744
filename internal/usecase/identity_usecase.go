package usecase

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"health-records-platform/internal/converter"
	"health-records-platform/internal/delivery/dto"
	"health-records-platform/internal/delivery/http/middleware"
	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"
	"health-records-platform/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrWalletAlreadyRegistered = errors.New("wallet address is already registered")
	ErrUsernameTaken           = errors.New("username is already taken")
	ErrHealthProfileNotFound   = errors.New("health profile not found")
)

// IdentityUsecase is the identity directory: it resolves wallet addresses,
// UIDs, and usernames to user records and owns wallet-first registration.
type IdentityUsecase interface {
	Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error)
	Verify(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.UserResponse, error)
	ResolveByUID(ctx context.Context, uid string) (*dto.UserResponse, error)
	ResolveByUsername(ctx context.Context, username string) (*dto.UserResponse, error)
	UpsertHealthProfile(ctx context.Context, req *dto.UpsertHealthProfileRequest) (*dto.HealthProfileResponse, error)
	GetHealthProfile(ctx context.Context, userID uuid.UUID) (*dto.HealthProfileResponse, error)
}

type identityUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	profileRepo  repository.HealthProfileRepository
	auditService service.AuditService
}

func NewIdentityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.HealthProfileRepository,
	auditService service.AuditService,
) IdentityUsecase {
	return &identityUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		profileRepo:  profileRepo,
		auditService: auditService,
	}
}

// Register creates a user on first wallet contact. The wallet address is
// case-normalized, the human-readable UID is generated, and the account starts
// in pending status until the application flow verifies it.
func (u *identityUsecase) Register(ctx context.Context, req *dto.RegisterUserRequest) (*dto.UserResponse, error) {
	wallet := strings.ToLower(strings.TrimSpace(req.WalletAddress))

	existing, err := u.userRepo.FindByWallet(u.db.WithContext(ctx), wallet)
	if err != nil {
		u.log.Warnf("Failed to check wallet %s: %+v", wallet, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrWalletAlreadyRegistered
	}

	existing, err = u.userRepo.FindByUsername(u.db.WithContext(ctx), req.Username)
	if err != nil {
		u.log.Warnf("Failed to check username %s: %+v", req.Username, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	uid, err := u.generateUID(ctx)
	if err != nil {
		u.log.Errorf("Failed to generate UID: %+v", err)
		return nil, err
	}

	user := &entity.User{
		WalletAddress: wallet,
		UID:           uid,
		Username:      req.Username,
		Role:          entity.Role(req.Role),
		Status:        entity.UserStatusPending,
		HospitalName:  req.HospitalName,
	}

	if err := u.userRepo.Create(u.db.WithContext(ctx), user); err != nil {
		u.log.Errorf("Failed to create user for wallet %s: %+v", wallet, err)
		return nil, err
	}

	u.auditService.Record(ctx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(), entity.JSON{
		"uid":  user.UID,
		"role": string(user.Role),
	})

	u.log.Infof("User registered: id=%s, uid=%s, role=%s", user.ID, user.UID, user.Role)
	return converter.UserToResponse(user), nil
}

// Verify marks a user as verified. Role/status changes flow through the
// application review process, not self-service.
func (u *identityUsecase) Verify(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	reviewerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.Status = entity.UserStatusVerified
	if err := u.userRepo.Update(u.db.WithContext(ctx), user); err != nil {
		u.log.Errorf("Failed to verify user %s: %+v", userID, err)
		return nil, err
	}

	u.auditService.Record(ctx, &reviewerID, entity.AuditActionUserVerify, "user", user.ID.String(), nil)

	return converter.UserToResponse(user), nil
}

// GetCurrentUser returns the caller's own record
func (u *identityUsecase) GetCurrentUser(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *identityUsecase) ResolveByUID(ctx context.Context, uid string) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByUID(u.db.WithContext(ctx), uid)
	if err != nil {
		u.log.Warnf("Failed to resolve UID %s: %+v", uid, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

func (u *identityUsecase) ResolveByUsername(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByUsername(u.db.WithContext(ctx), username)
	if err != nil {
		u.log.Warnf("Failed to resolve username %s: %+v", username, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return converter.UserToResponse(user), nil
}

// UpsertHealthProfile stores the caller's emergency medical summary
func (u *identityUsecase) UpsertHealthProfile(ctx context.Context, req *dto.UpsertHealthProfileRequest) (*dto.HealthProfileResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	profile := &entity.HealthProfile{
		UserID:                userID,
		BloodType:             req.BloodType,
		Allergies:             req.Allergies,
		ChronicConditions:     req.ChronicConditions,
		Medications:           req.Medications,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	}

	if err := u.profileRepo.Upsert(u.db.WithContext(ctx), profile); err != nil {
		u.log.Errorf("Failed to upsert health profile for user %s: %+v", userID, err)
		return nil, err
	}

	return converter.HealthProfileToResponse(profile), nil
}

func (u *identityUsecase) GetHealthProfile(ctx context.Context, userID uuid.UUID) (*dto.HealthProfileResponse, error) {
	profile, err := u.profileRepo.FindByUserID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find health profile for user %s: %+v", userID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrHealthProfileNotFound
	}
	return converter.HealthProfileToResponse(profile), nil
}

// generateUID generates a globally unique human-readable UID: HID#########
func (u *identityUsecase) generateUID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return "", err
		}
		uid := fmt.Sprintf("HID%09d", binary.BigEndian.Uint32(buf[:])%1_000_000_000)

		existing, err := u.userRepo.FindByUID(u.db.WithContext(ctx), uid)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return uid, nil
		}
	}
	return "", errors.New("failed to generate a unique UID")
}
