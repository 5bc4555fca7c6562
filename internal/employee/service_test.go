package employee_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KarlovS28/dela/internal"
	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/auth"
	"github.com/KarlovS28/dela/internal/employee"
	"github.com/KarlovS28/dela/internal/equipment"
	"github.com/KarlovS28/dela/internal/rbac"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

// Mock repository for testing
type mockEmployeeRepository struct {
	employees    map[int64]*employee.Employee
	held         map[int64][]employee.ReturnedEquipment
	archiveError error
	nextID       int64
}

func newMockEmployeeRepository() *mockEmployeeRepository {
	return &mockEmployeeRepository{
		employees: make(map[int64]*employee.Employee),
		held:      make(map[int64][]employee.ReturnedEquipment),
		nextID:    1,
	}
}

func (m *mockEmployeeRepository) add(emp *employee.Employee) *employee.Employee {
	if emp.ID == 0 {
		emp.ID = m.nextID
		m.nextID++
	}
	m.employees[emp.ID] = emp
	return emp
}

func (m *mockEmployeeRepository) Create(emp *employee.Employee) error {
	m.add(emp)
	return nil
}

func (m *mockEmployeeRepository) GetByID(id int64) (*employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (m *mockEmployeeRepository) List(archived bool, departmentID int64, limit, offset int) ([]*employee.Employee, error) {
	var out []*employee.Employee
	for _, emp := range m.employees {
		if emp.IsArchived != archived {
			continue
		}
		if departmentID > 0 && (emp.DepartmentID == nil || *emp.DepartmentID != departmentID) {
			continue
		}
		out = append(out, emp)
	}
	return out, nil
}

func (m *mockEmployeeRepository) Update(emp *employee.Employee) error {
	m.employees[emp.ID] = emp
	return nil
}

func (m *mockEmployeeRepository) ArchiveWithEquipment(id int64) ([]employee.ReturnedEquipment, error) {
	if m.archiveError != nil {
		return nil, m.archiveError
	}
	emp, ok := m.employees[id]
	if !ok {
		return nil, employee.ErrEmployeeNotFound
	}
	emp.IsArchived = true
	returned := m.held[id]
	delete(m.held, id)
	return returned, nil
}

func (m *mockEmployeeRepository) CountAssignedEquipment(id int64) (int64, error) {
	return int64(len(m.held[id])), nil
}

func (m *mockEmployeeRepository) Delete(id int64) error {
	if _, ok := m.employees[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	delete(m.employees, id)
	return nil
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, entry audit.Entry) {
	m.entries = append(m.entries, entry)
}

func (m *mockRecorder) byAction(action audit.Action) []audit.Entry {
	var out []audit.Entry
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

var _ = Describe("Employee Service", func() {
	var (
		repo     *mockEmployeeRepository
		recorder *mockRecorder
		service  *employee.Service
		ctx      context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	archiver := &auth.User{
		ID:          5,
		RoleName:    "accountant",
		Permissions: []string{rbac.PermEmployeesView, rbac.PermEmployeesArchive},
	}
	viewer := &auth.User{
		ID:          6,
		RoleName:    "user",
		Permissions: []string{rbac.PermEmployeesView},
	}
	admin := &auth.User{
		ID:          1,
		RoleName:    "admin",
		IsSuperRole: true,
	}

	BeforeEach(func() {
		repo = newMockEmployeeRepository()
		recorder = &mockRecorder{}
		service = employee.NewService(repo, recorder, testLogger)
		ctx = context.Background()
	})

	activeEmployee := func(name string) *employee.Employee {
		return repo.add(&employee.Employee{FullName: name, Position: "engineer"})
	}

	Describe("Create", func() {
		It("adds an employee to the active roster", func() {
			emp, err := service.Create(ctx, employee.CreateEmployeeDTO{
				FullName: "Ivan Petrov",
				Position: "sysadmin",
			}, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(emp.IsArchived).To(BeFalse())
			Expect(recorder.byAction(audit.ActionCreate)).To(HaveLen(1))
		})

		It("rejects an empty name", func() {
			_, err := service.Create(ctx, employee.CreateEmployeeDTO{}, 1)
			Expect(err).To(HaveOccurred())
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("refuses to edit an archived employee", func() {
			emp := activeEmployee("Ivan Petrov")
			emp.IsArchived = true

			_, err := service.Update(ctx, emp.ID, employee.UpdateEmployeeDTO{FullName: "Renamed"}, 1)
			Expect(err).To(Equal(employee.ErrEmployeeArchived))
		})
	})

	Describe("Archive", func() {
		It("archives the employee and audits every returned item", func() {
			emp := activeEmployee("Ivan Petrov")
			repo.held[emp.ID] = []employee.ReturnedEquipment{
				{EquipmentID: 10, InventoryNumber: "INV-010"},
				{EquipmentID: 11, InventoryNumber: "INV-011"},
			}

			archived, err := service.Archive(ctx, emp.ID, archiver)
			Expect(err).NotTo(HaveOccurred())
			Expect(archived.IsArchived).To(BeTrue())

			Expect(recorder.byAction(audit.ActionArchive)).To(HaveLen(1))

			returns := recorder.byAction(audit.ActionReturn)
			Expect(returns).To(HaveLen(2))
			for _, entry := range returns {
				before := entry.OldValue.(equipment.Snapshot)
				Expect(before.EmployeeID).To(HaveValue(Equal(emp.ID)))
				Expect(before.IsDecommissioned).To(BeFalse())

				after := entry.NewValue.(equipment.Snapshot)
				Expect(after.EmployeeID).To(BeNil())
				Expect(after.IsDecommissioned).To(BeFalse())
			}
		})

		It("denies an actor without the archive permission", func() {
			emp := activeEmployee("Ivan Petrov")

			_, err := service.Archive(ctx, emp.ID, viewer)
			Expect(err).To(Equal(internal.ErrInsufficientPermission))
			Expect(emp.IsArchived).To(BeFalse())
			Expect(recorder.entries).To(BeEmpty())
		})

		It("lets a super role archive without an explicit grant", func() {
			emp := activeEmployee("Ivan Petrov")

			_, err := service.Archive(ctx, emp.ID, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(emp.IsArchived).To(BeTrue())
		})

		It("treats re-archiving as a no-op", func() {
			emp := activeEmployee("Ivan Petrov")
			emp.IsArchived = true

			archived, err := service.Archive(ctx, emp.ID, archiver)
			Expect(err).NotTo(HaveOccurred())
			Expect(archived.IsArchived).To(BeTrue())
			Expect(recorder.entries).To(BeEmpty())
		})

		It("keeps the employee active when the cascade fails", func() {
			emp := activeEmployee("Ivan Petrov")
			repo.archiveError = errors.New("deadlock detected")

			_, err := service.Archive(ctx, emp.ID, archiver)
			Expect(err).To(HaveOccurred())
			Expect(emp.IsArchived).To(BeFalse())
			Expect(recorder.entries).To(BeEmpty())
		})
	})

	Describe("Delete", func() {
		It("refuses while the employee still holds equipment", func() {
			emp := activeEmployee("Ivan Petrov")
			repo.held[emp.ID] = []employee.ReturnedEquipment{{EquipmentID: 10, InventoryNumber: "INV-010"}}

			err := service.Delete(ctx, emp.ID, 1)
			Expect(err).To(Equal(employee.ErrHoldsEquipment))
		})

		It("refuses to delete an archived employee", func() {
			emp := activeEmployee("Ivan Petrov")
			emp.IsArchived = true

			err := service.Delete(ctx, emp.ID, 1)
			Expect(err).To(Equal(employee.ErrEmployeeArchived))
		})

		It("removes an unencumbered active employee", func() {
			emp := activeEmployee("Ivan Petrov")

			Expect(service.Delete(ctx, emp.ID, 1)).To(Succeed())
			Expect(repo.employees).To(BeEmpty())
			Expect(recorder.byAction(audit.ActionDelete)).To(HaveLen(1))
		})
	})

	Describe("EmployeeExists", func() {
		It("reports presence and archive state", func() {
			emp := activeEmployee("Ivan Petrov")

			exists, archived, err := service.EmployeeExists(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
			Expect(archived).To(BeFalse())

			emp.IsArchived = true
			_, archived, _ = service.EmployeeExists(emp.ID)
			Expect(archived).To(BeTrue())

			exists, _, err = service.EmployeeExists(404)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})
	})

	Describe("List", func() {
		It("separates active and archived rosters", func() {
			activeEmployee("Ivan Petrov")
			gone := activeEmployee("Anna Sidorova")
			gone.IsArchived = true

			active, err := service.List(0, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].FullName).To(Equal("Ivan Petrov"))

			archived, err := service.ListArchived(0, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(archived).To(HaveLen(1))
			Expect(archived[0].FullName).To(Equal("Anna Sidorova"))
		})
	})
})
