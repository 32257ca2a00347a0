package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"solarsizing/internal/app"
	"solarsizing/internal/config"
	"solarsizing/internal/db"
	apperrors "solarsizing/internal/errors"
	"solarsizing/internal/logger"
	"solarsizing/internal/model"
	"solarsizing/internal/repository"
	"solarsizing/internal/service"
)

//go:embed demo.json
var defaultFixture []byte

// SeedFixture is the demo data file layout.
type SeedFixture struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is one demo account with its projects.
type SeedUser struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Active   bool          `json:"active"`
	Payment  SeedPayment   `json:"payment"`
	Projects []SeedProject `json:"projects"`
}

type SeedPayment struct {
	Method      string `json:"method"`
	CardNumber  string `json:"card_number,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// SeedProject is a project with its inputs history, oldest first.
type SeedProject struct {
	Name         string                   `json:"name"`
	Currency     string                   `json:"currency"`
	SiteLocation map[string]interface{}   `json:"site_location_json"`
	Inputs       []map[string]interface{} `json:"inputs"`
	Calculate    bool                     `json:"calculate"`
}

func main() {
	source := flag.String("file", "", "fixture path or http(s) URL; defaults to the bundled demo data")
	flag.Parse()

	if err := run(*source); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(source string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Development: true})
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.DatabaseURL, db.Options{MaxOpenConns: 1}, log)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	fixture, err := loadFixture(source)
	if err != nil {
		return err
	}
	log.Info("fixture loaded", zap.Int("users", len(fixture.Users)))

	services, err := app.NewServices(app.Dependencies{Config: cfg, Logger: log, DB: gormDB})
	if err != nil {
		return err
	}
	defer services.Events.Close()

	s := &seeder{
		services: services,
		users:    repository.NewUserRepository(gormDB),
		log:      log,
	}
	return s.seed(context.Background(), fixture)
}

// loadFixture reads the fixture from a file, a URL, or the bundled default.
func loadFixture(source string) (*SeedFixture, error) {
	var data []byte
	var err error

	switch {
	case source == "":
		data = defaultFixture
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		data, err = fetchFixture(source)
	default:
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, err
	}

	var fixture SeedFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &fixture, nil
}

// fetchFixture fetches fixture data from a remote URL.
func fetchFixture(url string) ([]byte, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fixture URL returned status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

type seeder struct {
	services *app.Services
	users    repository.UserRepository
	log      *zap.Logger
}

// seed registers each demo user and loads their projects. Users that already
// exist are left alone, so the command can be run repeatedly.
func (s *seeder) seed(ctx context.Context, fixture *SeedFixture) error {
	var created, skipped int
	for _, su := range fixture.Users {
		user, err := s.services.Auth.Register(ctx, service.RegisterInput{
			Name:     su.Name,
			Email:    su.Email,
			Password: su.Password,
			Payment: service.PaymentInfo{
				Method:      su.Payment.Method,
				CardNumber:  su.Payment.CardNumber,
				PhoneNumber: su.Payment.PhoneNumber,
			},
		})
		if errors.Is(err, apperrors.ErrDuplicateEmail) {
			s.log.Info("user exists, skipping", zap.String("email", su.Email))
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", su.Email, err)
		}
		created++

		if su.Active {
			if _, err := s.users.Activate(ctx, user.ID, time.Now()); err != nil {
				return fmt.Errorf("activate %s: %w", su.Email, err)
			}
		}
		for _, sp := range su.Projects {
			if err := s.seedProject(ctx, user, sp); err != nil {
				return fmt.Errorf("project %q for %s: %w", sp.Name, su.Email, err)
			}
		}
	}

	s.log.Info("seed completed", zap.Int("users_created", created), zap.Int("users_skipped", skipped))
	return nil
}

func (s *seeder) seedProject(ctx context.Context, user *model.User, sp SeedProject) error {
	project, err := s.services.Projects.CreateProject(ctx, user.ID, service.CreateProjectInput{
		Name:         sp.Name,
		SiteLocation: sp.SiteLocation,
		Currency:     sp.Currency,
	})
	if err != nil {
		return err
	}
	for _, payload := range sp.Inputs {
		if _, err := s.services.Projects.SaveInputs(ctx, user.ID, project.ID, payload); err != nil {
			return err
		}
	}
	if sp.Calculate && len(sp.Inputs) > 0 {
		calc, err := s.services.Projects.RunCalculation(ctx, user.ID, project.ID)
		if err != nil {
			return err
		}
		s.log.Info("calculated", zap.String("project", project.Name), zap.Any("results", calc.ResultsJSON))
	}
	return nil
}
