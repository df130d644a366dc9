// Package seed fills a database with demo users whose wallets are funded
// through the ledger engine, so every seeded balance matches its log.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"paylite/internal/account"
	"paylite/internal/domain"
	"paylite/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const seedPassword = "password123"

var (
	firstnames = []string{"Amina", "Blaise", "Chantal", "Didier", "Esther", "Fabrice", "Grace", "Hugo", "Ines", "Jules"}
	lastnames  = []string{"Mbarga", "Nkoulou", "Eto'o", "Fotso", "Kamga", "Ndjock", "Owona", "Tchami", "Abega", "Biyik"}
)

// Seeder creates demo users and activity
type Seeder struct {
	accounts *account.Service
	engine   *ledger.Engine
	rng      *rand.Rand
	log      logrus.FieldLogger
}

// New builds a seeder. A nil rng uses a randomly seeded source.
func New(accounts *account.Service, engine *ledger.Engine, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Seeder{accounts: accounts, engine: engine, rng: rng, log: logrus.StandardLogger()}
}

// Run creates count users. Each gets an opening deposit between 500 and 5000
// followed by one to five random deposits, withdrawals or transfers to users
// created earlier in the run. It returns the number of users created.
func (s *Seeder) Run(ctx context.Context, count int) (int, error) {
	var created []uint
	for i := 0; i < count; i++ {
		user, err := s.createUser(ctx)
		if err != nil {
			return len(created), err
		}
		if _, err := s.engine.Deposit(ctx, user.ID, s.amount(500, 5000)); err != nil {
			return len(created), err
		}
		for n := 1 + s.rng.IntN(5); n > 0; n-- {
			if err := s.activity(ctx, user.ID, created); err != nil {
				return len(created), err
			}
		}
		created = append(created, user.ID)
		if len(created)%100 == 0 {
			s.log.WithField("created", len(created)).Info("Seeding in progress")
		}
	}
	s.log.WithField("created", len(created)).Info("Seeding completed")
	return len(created), nil
}

func (s *Seeder) createUser(ctx context.Context) (*domain.User, error) {
	first := firstnames[s.rng.IntN(len(firstnames))]
	last := lastnames[s.rng.IntN(len(lastnames))]
	// Usernames and emails carry a random suffix so repeated runs do not collide
	suffix := uuid.NewString()[:8]
	return s.accounts.Register(ctx, account.RegisterRequest{
		Firstname: first,
		Lastname:  last,
		Username:  fmt.Sprintf("%s_%s", first, suffix),
		Email:     fmt.Sprintf("%s.%s@example.com", first, suffix),
		Password:  seedPassword,
	})
}

// activity applies one random operation. Rejections such as an insufficient
// balance are expected and skipped.
func (s *Seeder) activity(ctx context.Context, userID uint, others []uint) error {
	amount := s.amount(10, 100)
	var err error
	switch op := s.rng.IntN(3); {
	case op == 0:
		_, err = s.engine.Deposit(ctx, userID, amount)
	case op == 1:
		_, err = s.engine.Withdraw(ctx, userID, amount)
	case len(others) > 0:
		_, err = s.engine.Transfer(ctx, userID, others[s.rng.IntN(len(others))], amount)
	default:
		_, err = s.engine.Deposit(ctx, userID, amount)
	}
	if errors.Is(err, domain.ErrStorage) {
		return err
	}
	return nil
}

// amount returns a random amount in [min, max] with two fraction digits
func (s *Seeder) amount(min, max int64) decimal.Decimal {
	cents := min*100 + s.rng.Int64N((max-min)*100+1)
	return decimal.New(cents, -domain.MoneyScale)
}
