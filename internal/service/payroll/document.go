package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bheem-hr/hr-backend-go/internal/domain/employee"
	"github.com/bheem-hr/hr-backend-go/internal/domain/event"
	"github.com/bheem-hr/hr-backend-go/internal/domain/payroll"
	"github.com/jung-kurt/gofpdf"
)

// GeneratePayslipDocument renders the payslip as a PDF, stores it and records
// the stored path as the payslip's attachment. Regenerating overwrites the file.
func (s *PayrollServiceImpl) GeneratePayslipDocument(ctx context.Context, id string) (payroll.PayslipResponse, error) {
	if s.fileStorage == nil {
		return payroll.PayslipResponse{}, payroll.ErrDocumentStorageUnavailable
	}

	p, err := s.payslipRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get payslip: %w", err)
	}
	run, err := s.runRepo.GetByID(ctx, p.PayrollRunID)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get payroll run: %w", err)
	}
	emp, err := s.employeeRepo.GetByID(ctx, p.EmployeeID)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	var components []payroll.SalaryComponent
	structure, err := s.structureRepo.GetActiveByEmployeeID(ctx, emp.ID)
	switch {
	case err == nil:
		components = structure.Components
	case !errors.Is(err, payroll.ErrSalaryStructureNotFound):
		return payroll.PayslipResponse{}, fmt.Errorf("failed to get salary structure: %w", err)
	}

	doc, err := renderPayslip(emp, run, p, components)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	obj, err := s.fileStorage.Put(ctx, payslipDocumentKey(run, p), bytes.NewReader(doc), "application/pdf")
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to store payslip document: %w", err)
	}

	p, err = s.payslipRepo.SetAttachment(ctx, p.ID, obj.Key)
	if err != nil {
		return payroll.PayslipResponse{}, fmt.Errorf("failed to attach payslip document: %w", err)
	}

	resp := s.toPayslipResponse(ctx, p)
	s.publish(ctx, event.PayslipGenerated, run.CompanyID, map[string]any{
		"payslip_id":     p.ID,
		"payroll_run_id": run.ID,
		"employee_id":    emp.ID,
		"attachment_id":  obj.Key,
		"size":           obj.Size,
	})
	return resp, nil
}

func payslipDocumentKey(run payroll.PayrollRun, p payroll.Payslip) string {
	return fmt.Sprintf("payslips/%s/%s/%s.pdf", run.CompanyID, run.Month, p.ID)
}

// removeDocuments deletes stored payslip documents. Failures are only logged
// because the payslips they belonged to are already gone.
func (s *PayrollServiceImpl) removeDocuments(ctx context.Context, keys []string) {
	if s.fileStorage == nil {
		return
	}
	for _, key := range keys {
		if err := s.fileStorage.Remove(ctx, key); err != nil {
			slog.Warn("failed to remove payslip document", "key", key, "error", err)
		}
	}
}

func renderPayslip(emp employee.Employee, run payroll.PayrollRun, p payroll.Payslip, components []payroll.SalaryComponent) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", emp.FullName(), emp.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", run.Month))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Run status: %s", run.Status))
	pdf.Ln(10)

	if len(components) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(90, 8, "Component", "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, "Type", "B", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, "Amount", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		for _, c := range components {
			pdf.CellFormat(90, 7, c.Name, "", 0, "L", false, 0, "")
			pdf.CellFormat(40, 7, string(c.ComponentType), "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, c.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(5)
	}

	pdf.Cell(0, 8, fmt.Sprintf("Total earnings: %s", p.TotalEarnings.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %s", p.TotalDeductions.StringFixed(2)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %s", p.NetPay.StringFixed(2)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render payslip document: %w", err)
	}
	return buf.Bytes(), nil
}
