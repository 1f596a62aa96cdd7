package memory

import (
	"context"
	"sort"
	"time"

	"github.com/bheem-hr/hr-backend-go/internal/domain/attendance"
)

type attendanceRepository struct {
	*Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{Store: s}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.lock(ctx)()

	for _, existing := range r.attendances {
		if existing.EmployeeID == a.EmployeeID && sameDay(existing.Date, a.Date) {
			return attendance.Attendance{}, attendance.ErrAttendanceExists
		}
	}
	a.ID = newID()
	now := r.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.attendances[a.ID] = a
	return a, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	defer r.lock(ctx)()

	a, ok := r.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	defer r.lock(ctx)()

	for _, a := range r.attendances {
		if a.EmployeeID == employeeID && sameDay(a.Date, date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.lock(ctx)()

	existing, ok := r.attendances[a.ID]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = r.now()
	r.attendances[a.ID] = a
	return a, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	defer r.lock(ctx)()

	if _, ok := r.attendances[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.attendances, id)
	return nil
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	defer r.lock(ctx)()

	var matched []attendance.Attendance
	for _, a := range r.attendances {
		if filter.CompanyID != "" && a.CompanyID != filter.CompanyID {
			continue
		}
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && !a.Status.Is(attendance.Status(*filter.Status)) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].EmployeeID < matched[j].EmployeeID
	})
	return paginate(matched, filter.Limit, filter.Offset), int64(len(matched)), nil
}

func (r *attendanceRepository) ListByEmployeeInRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Attendance, error) {
	return r.inRange(ctx, start, end, func(a attendance.Attendance) bool { return a.EmployeeID == employeeID }), nil
}

func (r *attendanceRepository) ListByCompanyInRange(ctx context.Context, companyID string, start, end time.Time) ([]attendance.Attendance, error) {
	return r.inRange(ctx, start, end, func(a attendance.Attendance) bool { return a.CompanyID == companyID }), nil
}

func (r *attendanceRepository) inRange(ctx context.Context, start, end time.Time, keep func(attendance.Attendance) bool) []attendance.Attendance {
	defer r.lock(ctx)()

	result := []attendance.Attendance{}
	for _, a := range r.attendances {
		if !keep(a) || a.Date.Before(start) || a.Date.After(end) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].EmployeeID != result[j].EmployeeID {
			return result[i].EmployeeID < result[j].EmployeeID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result
}

func (r *attendanceRepository) ListOpenBefore(ctx context.Context, date time.Time) ([]attendance.Attendance, error) {
	defer r.lock(ctx)()

	result := []attendance.Attendance{}
	for _, a := range r.attendances {
		if a.CheckIn != nil && a.CheckOut == nil && a.Date.Before(date) {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}
