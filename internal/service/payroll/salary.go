package payroll

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/bheem-hr/hr-backend-go/internal/pkg/database"
)

type SalaryServiceImpl struct {
	tx            database.Transactor
	structureRepo payroll.SalaryStructureRepository
	employeeRepo  employee.EmployeeRepository
	publisher     event.Publisher
}

func NewSalaryService(
	tx database.Transactor,
	structureRepo payroll.SalaryStructureRepository,
	employeeRepo employee.EmployeeRepository,
	publisher event.Publisher,
) *SalaryServiceImpl {
	return &SalaryServiceImpl{
		tx:            tx,
		structureRepo: structureRepo,
		employeeRepo:  employeeRepo,
		publisher:     publisher,
	}
}

func (s *SalaryServiceImpl) publish(ctx context.Context, name event.Name, structure payroll.SalaryStructure) {
	if s.publisher == nil {
		return
	}
	emp, err := s.employeeRepo.GetByID(ctx, structure.EmployeeID)
	if err != nil {
		slog.Warn("failed to resolve company for event", "event", name, "error", err)
		return
	}
	payload := map[string]any{
		"salary_structure_id": structure.ID,
		"employee_id":         structure.EmployeeID,
		"is_active":           structure.IsActive,
	}
	if err := s.publisher.Publish(ctx, event.New(name, emp.CompanyID, payload)); err != nil {
		slog.Warn("failed to publish event", "event", name, "error", err)
	}
}

func (s *SalaryServiceImpl) CreateStructure(ctx context.Context, req payroll.CreateSalaryStructureRequest) (payroll.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.SalaryStructureResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	var created payroll.SalaryStructure
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.structureRepo.Create(txCtx, req.ToSalaryStructure())
		if err != nil {
			return fmt.Errorf("failed to create salary structure: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	s.publish(ctx, event.SalaryStructureCreated, created)
	return payroll.ToSalaryStructureResponse(created), nil
}

func (s *SalaryServiceImpl) GetStructure(ctx context.Context, id string) (payroll.SalaryStructureResponse, error) {
	structure, err := s.structureRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SalaryStructureResponse{}, fmt.Errorf("failed to get salary structure: %w", err)
	}
	return payroll.ToSalaryStructureResponse(structure), nil
}

func (s *SalaryServiceImpl) ListStructures(ctx context.Context, filter payroll.SalaryStructureFilter) (payroll.ListSalaryStructureResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSalaryStructureResponse{}, err
	}

	structures, total, err := s.structureRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListSalaryStructureResponse{}, fmt.Errorf("failed to list salary structures: %w", err)
	}

	resp := payroll.ListSalaryStructureResponse{
		SalaryStructures: make([]payroll.SalaryStructureResponse, 0, len(structures)),
		TotalCount:       total,
		Limit:            filter.Limit,
		Offset:           filter.Offset,
	}
	for _, st := range structures {
		resp.SalaryStructures = append(resp.SalaryStructures, payroll.ToSalaryStructureResponse(st))
	}
	return resp, nil
}

func (s *SalaryServiceImpl) UpdateStructure(ctx context.Context, req payroll.UpdateSalaryStructureRequest) (payroll.SalaryStructureResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	var updated payroll.SalaryStructure
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.structureRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get salary structure: %w", err)
		}
		updated, err = s.structureRepo.Update(txCtx, req.Apply(existing))
		if err != nil {
			return fmt.Errorf("failed to update salary structure: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.SalaryStructureResponse{}, err
	}

	s.publish(ctx, event.SalaryStructureUpdated, updated)
	return payroll.ToSalaryStructureResponse(updated), nil
}

// DeleteStructure removes the structure and all of its components.
func (s *SalaryServiceImpl) DeleteStructure(ctx context.Context, id string) error {
	existing, err := s.structureRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get salary structure: %w", err)
	}
	if err := s.structureRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete salary structure: %w", err)
	}

	s.publish(ctx, event.SalaryStructureDeleted, existing)
	return nil
}

// ========== COMPONENTS ==========

func (s *SalaryServiceImpl) AddComponent(ctx context.Context, req payroll.CreateSalaryComponentRequest) (payroll.SalaryComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryComponentResponse{}, err
	}

	created, err := s.structureRepo.AddComponent(ctx, req.ToComponent())
	if err != nil {
		return payroll.SalaryComponentResponse{}, fmt.Errorf("failed to add salary component: %w", err)
	}

	s.componentChanged(ctx, created.StructureID)
	return payroll.ToSalaryComponentResponse(created), nil
}

func (s *SalaryServiceImpl) UpdateComponent(ctx context.Context, req payroll.UpdateSalaryComponentRequest) (payroll.SalaryComponentResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryComponentResponse{}, err
	}

	var updated payroll.SalaryComponent
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := s.structureRepo.GetComponentByID(txCtx, req.ID)
		if err != nil {
			return fmt.Errorf("failed to get salary component: %w", err)
		}
		updated, err = s.structureRepo.UpdateComponent(txCtx, req.Apply(existing))
		if err != nil {
			return fmt.Errorf("failed to update salary component: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.SalaryComponentResponse{}, err
	}

	s.componentChanged(ctx, updated.StructureID)
	return payroll.ToSalaryComponentResponse(updated), nil
}

func (s *SalaryServiceImpl) DeleteComponent(ctx context.Context, id string) error {
	existing, err := s.structureRepo.GetComponentByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get salary component: %w", err)
	}
	if err := s.structureRepo.DeleteComponent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete salary component: %w", err)
	}

	s.componentChanged(ctx, existing.StructureID)
	return nil
}

// componentChanged announces a component edit as an update of its structure.
func (s *SalaryServiceImpl) componentChanged(ctx context.Context, structureID string) {
	if s.publisher == nil {
		return
	}
	structure, err := s.structureRepo.GetByID(ctx, structureID)
	if err != nil {
		slog.Warn("failed to load salary structure for event", "salary_structure_id", structureID, "error", err)
		return
	}
	s.publish(ctx, event.SalaryStructureUpdated, structure)
}
