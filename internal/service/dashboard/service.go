package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/clock"
)

const recentTokens = 8

type DashboardServicer interface {
	Overview(ctx context.Context) (*model.Overview, error)
	Departments(ctx context.Context) ([]*model.DepartmentSummary, error)
}

type Service struct {
	doctors repository.DoctorRepository
	tokens  repository.TokenRepository
	leaves  repository.LeaveRepository
	clock   clock.Clock
}

func NewService(doctors repository.DoctorRepository, tokens repository.TokenRepository, leaves repository.LeaveRepository, clk clock.Clock) *Service {
	return &Service{
		doctors: doctors,
		tokens:  tokens,
		leaves:  leaves,
		clock:   clk,
	}
}

func (s *Service) Overview(ctx context.Context) (*model.Overview, error) {
	today := s.clock.Today()

	tokens, err := s.tokens.List(ctx, &model.TokenFilters{Date: today})
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	pending, err := s.leaves.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending leave: %w", err)
	}

	ov := &model.Overview{
		Date:         today,
		TotalTokens:  len(tokens),
		PendingLeave: pending,
		RecentTokens: []*model.Token{},
	}
	for _, t := range tokens {
		ov.StatusCounts.Add(t.Status)
	}
	ov.Waiting = ov.StatusCounts.Waiting
	ov.Completed = ov.StatusCounts.Completed

	for _, d := range doctors {
		if d.Status == model.DoctorStatusActive {
			ov.ActiveDoctors++
		}
	}

	for i := len(tokens) - 1; i >= 0 && len(ov.RecentTokens) < recentTokens; i-- {
		ov.RecentTokens = append(ov.RecentTokens, tokens[i])
	}
	return ov, nil
}

// Departments summarises doctor availability per department, by name.
func (s *Service) Departments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	byName := map[string]*model.DepartmentSummary{}
	for _, d := range doctors {
		sum, ok := byName[d.Department]
		if !ok {
			sum = &model.DepartmentSummary{Department: d.Department}
			byName[d.Department] = sum
		}
		sum.Doctors++
		if d.Status == model.DoctorStatusActive {
			sum.Active++
		}
	}

	out := make([]*model.DepartmentSummary, 0, len(byName))
	for _, sum := range byName {
		sum.AvailablePct = int(math.Round(float64(sum.Active) / float64(sum.Doctors) * 100))
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out, nil
}
