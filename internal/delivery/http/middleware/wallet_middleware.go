package middleware

import (
	"context"
	"net/http"
	"strings"

	"health-records-platform/internal/domain/entity"
	"health-records-platform/internal/domain/repository"
	"health-records-platform/pkg/response"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type contextKey string

const (
	UserIDKey     contextKey = "user_id"
	UserRoleKey   contextKey = "user_role"
	UserWalletKey contextKey = "user_wallet"
)

// WalletHeader carries the caller's wallet address on every authenticated
// request.
const WalletHeader = "X-Wallet-Address"

// WalletAuthMiddleware identifies the caller by the wallet address supplied in
// the request header, resolved through the identity directory. Wallet
// addresses are case-normalized before lookup.
type WalletAuthMiddleware struct {
	db       *gorm.DB
	log      *logrus.Logger
	userRepo repository.UserRepository
}

func NewWalletAuthMiddleware(db *gorm.DB, log *logrus.Logger, userRepo repository.UserRepository) *WalletAuthMiddleware {
	return &WalletAuthMiddleware{
		db:       db,
		log:      log,
		userRepo: userRepo,
	}
}

func (m *WalletAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wallet := strings.ToLower(strings.TrimSpace(r.Header.Get(WalletHeader)))
		if wallet == "" {
			response.Unauthorized(w, "Wallet address header is required")
			return
		}

		user, err := m.userRepo.FindByWallet(m.db.WithContext(r.Context()), wallet)
		if err != nil {
			m.log.Errorf("Failed to resolve wallet %s: %+v", wallet, err)
			response.InternalServerError(w, "Failed to resolve caller identity")
			return
		}
		if user == nil {
			response.Unauthorized(w, "Unknown wallet address")
			return
		}

		// Add user info to context
		ctx := context.WithValue(r.Context(), UserIDKey, user.ID)
		ctx = context.WithValue(ctx, UserRoleKey, user.Role)
		ctx = context.WithValue(ctx, UserWalletKey, user.WalletAddress)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts user ID from context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRoleFromContext extracts user role from context
func GetUserRoleFromContext(ctx context.Context) (entity.Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(entity.Role)
	return role, ok
}

// GetUserWalletFromContext extracts the caller wallet address from context
func GetUserWalletFromContext(ctx context.Context) (string, bool) {
	wallet, ok := ctx.Value(UserWalletKey).(string)
	return wallet, ok
}
