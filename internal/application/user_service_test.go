package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/mailer"
)

type recordingPublisher struct {
	jobs []mailer.EmailJob
	err  error
}

func (p *recordingPublisher) PublishEmail(_ context.Context, job mailer.EmailJob) error {
	p.jobs = append(p.jobs, job)
	return p.err
}

func newUserService(mail EmailPublisher) *UserService {
	repos := memory.NewRepositories()
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	svc := NewUserService(repos.Users, jwt, nil, nil, mail)
	svc.Passwords = helpers.NewPasswordHasher(bcrypt.MinCost)
	return svc
}

func TestUserService_RegisterQueuesWelcomeEmail(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newUserService(pub)

	u, err := svc.Register(context.Background(), RegisterInput{Email: "Ana@Example.COM", Password: "secret1", Name: " Ana "})
	require.NoError(t, err)

	require.Len(t, pub.jobs, 1)
	job := pub.jobs[0]
	assert.Equal(t, u.Email, job.To)
	assert.Equal(t, mailer.TemplateWelcome, job.Template)
	assert.Equal(t, "Ana", job.Data["Name"])
	assert.NoError(t, job.Validate())
}

func TestUserService_RegisterSurvivesQueueFailure(t *testing.T) {
	svc := newUserService(&recordingPublisher{err: errors.New("broker down")})

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestUserService_RegisterRejectsOverlongPassword(t *testing.T) {
	svc := newUserService(nil)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "ana@example.com", Password: strings.Repeat("x", 80)})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")
}

func TestUserService_AuthenticateRehashesOnCostChange(t *testing.T) {
	svc := newUserService(nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	old := u.Password

	svc.Passwords = helpers.NewPasswordHasher(bcrypt.MinCost + 1)
	_, err = svc.Authenticate(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	stored, err := svc.Repo.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, old, stored.Password)
	cost, err := bcrypt.Cost([]byte(stored.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
