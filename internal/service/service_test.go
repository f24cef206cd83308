package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/library-service/internal/config"
	"github.com/Dan9191/library-service/internal/db"
	"github.com/Dan9191/library-service/internal/repository"
	"github.com/Dan9191/library-service/internal/testutil"
	"github.com/Dan9191/library-service/internal/utils"
)

var (
	testAuthConfig = config.AuthConfig{
		UsernameMinLength: 3,
		UsernameMaxLength: 20,
		PasswordMinLength: 6,
		PasswordMaxLength: 72,
	}
	testPagingConfig = config.PagingConfig{
		DefaultPageNumber: 1,
		DefaultPageSize:   10,
		MaxPageSize:       100,
		MaxSearchLength:   100,
	}
	testTokenConfig = utils.TokenConfig{
		Issuer:   "library-service",
		Audience: "library-clients",
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		TTL:      time.Hour,
	}
)

type testDeps struct {
	repo   *repository.Repository
	tokens *utils.TokenManager
	hasher *utils.PasswordHasher
	auth   *AuthService
	books  *BookService
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	repo := repository.NewRepository(testutil.OpenInMemoryDB(t), db.DriverSQLite)
	log := testutil.NewLogger()
	tokens := utils.NewTokenManager(testTokenConfig)
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	return &testDeps{
		repo:   repo,
		tokens: tokens,
		hasher: hasher,
		auth:   NewAuthService(repo, hasher, tokens, testAuthConfig, log),
		books:  NewBookService(repo, testPagingConfig, log),
	}
}

func intPtr(v int) *int { return &v }
