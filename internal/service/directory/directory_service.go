package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/Domenick1991/opdqueue/internal/repository"
	"github.com/rs/zerolog"
)

type DirectoryUseCase interface {
	ListDoctors(ctx context.Context) []domain.Doctor
	FindDoctorByName(ctx context.Context, name string) (*domain.Doctor, bool)
	FindDoctorByUID(ctx context.Context, uid string) (*domain.Doctor, error)
	Refresh(ctx context.Context) error
}

type Cache interface {
	GetDoctors(ctx context.Context) ([]domain.Doctor, error)
	SetDoctors(ctx context.Context, doctors []domain.Doctor) error
}

type DirectoryService struct {
	repo  repository.DoctorRepository
	cache Cache
	log   zerolog.Logger
}

func NewDirectoryService(repo repository.DoctorRepository, cache Cache, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		repo:  repo,
		cache: cache,
		log:   log.With().Str("component", "directory").Logger(),
	}
}

// ListDoctors never fails: an unreachable store yields an empty roster and the
// caller offers no doctor to pick.
func (s *DirectoryService) ListDoctors(ctx context.Context) []domain.Doctor {
	if s.cache != nil {
		if cached, err := s.cache.GetDoctors(ctx); err == nil && cached != nil {
			return cached
		} else if err != nil {
			s.log.Warn().Err(err).Msg("doctor cache read failed")
		}
	}

	doctors, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list doctors failed, serving empty roster")
		return []domain.Doctor{}
	}
	if s.cache != nil {
		if err := s.cache.SetDoctors(ctx, doctors); err != nil {
			s.log.Warn().Err(err).Msg("doctor cache write failed")
		}
	}
	return doctors
}

func (s *DirectoryService) FindDoctorByName(ctx context.Context, name string) (*domain.Doctor, bool) {
	want := normalizeName(name)
	if want == "" {
		return nil, false
	}
	for _, d := range s.ListDoctors(ctx) {
		if normalizeName(d.Name) == want {
			return &d, true
		}
	}
	return nil, false
}

func (s *DirectoryService) FindDoctorByUID(ctx context.Context, uid string) (*domain.Doctor, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, domain.ErrDoctorNotFound
	}
	doctor, err := s.repo.GetByAuthSubject(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: find doctor: %v", domain.ErrStoreUnavailable, err)
	}
	return doctor, nil
}

// Refresh reloads the roster from the store into the cache.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("%w: list doctors: %v", domain.ErrStoreUnavailable, err)
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.SetDoctors(ctx, doctors)
}

// normalizeName folds case, whitespace and an optional "Dr." title so that
// "Dr. Mehta", "dr mehta" and "Mehta" all match.
func normalizeName(name string) string {
	n := strings.ToLower(strings.Join(strings.Fields(name), " "))
	for _, prefix := range []string{"dr. ", "dr.", "dr "} {
		if strings.HasPrefix(n, prefix) {
			n = strings.TrimSpace(strings.TrimPrefix(n, prefix))
			break
		}
	}
	return n
}

var _ DirectoryUseCase = (*DirectoryService)(nil)
