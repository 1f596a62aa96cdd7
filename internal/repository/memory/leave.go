package memory

import (
	"context"
	"sort"

	"github.com/bheem-hr/hr-backend-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	*Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{Store: s}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.lock(ctx)()

	req.ID = newID()
	if req.Status == "" {
		req.Status = leave.LeaveRequestStatusPending
	}
	now := r.now()
	req.CreatedAt, req.UpdatedAt = now, now
	r.leaveRequests[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.lock(ctx)()

	req, ok := r.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

// GetByIDForUpdate needs no row lock: transactions on the store are serialized.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	defer r.lock(ctx)()

	var matched []leave.LeaveRequest
	for _, req := range r.leaveRequests {
		if filter.CompanyID != "" && req.CompanyID != filter.CompanyID {
			continue
		}
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		matched = append(matched, req)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].StartDate.Equal(matched[j].StartDate) {
			return matched[i].StartDate.After(matched[j].StartDate)
		}
		return matched[i].ID > matched[j].ID
	})
	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.lock(ctx)()

	existing, ok := r.leaveRequests[req.ID]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	req.CreatedAt = existing.CreatedAt
	req.UpdatedAt = r.now()
	r.leaveRequests[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepository) Delete(ctx context.Context, id string) error {
	defer r.lock(ctx)()

	if _, ok := r.leaveRequests[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(r.leaveRequests, id)
	return nil
}
