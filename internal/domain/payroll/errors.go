package payroll

import "errors"

var (
	// Payroll run errors
	ErrPayrollRunNotFound     = errors.New("payroll run not found")
	ErrPayrollRunExists       = errors.New("payroll run already exists for this month")
	ErrPayrollRunNotDraft     = errors.New("payroll run is not in Draft status")
	ErrPayrollRunNotProcessed = errors.New("payroll run has not been processed")

	// Payslip errors
	ErrPayslipNotFound            = errors.New("payslip not found")
	ErrDocumentStorageUnavailable = errors.New("payslip document storage is not configured")

	// Salary structure errors
	ErrSalaryStructureNotFound = errors.New("salary structure not found")
	ErrSalaryComponentNotFound = errors.New("salary component not found")
)
