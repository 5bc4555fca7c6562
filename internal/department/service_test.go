package department_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/department"
)

func TestDepartment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Suite")
}

// Mock repository for testing
type mockDepartmentRepository struct {
	departments map[int64]*department.Department
	byName      map[string]*department.Department
	headcounts  map[int64]int64
	nextID      int64
}

func newMockDepartmentRepository() *mockDepartmentRepository {
	return &mockDepartmentRepository{
		departments: make(map[int64]*department.Department),
		byName:      make(map[string]*department.Department),
		headcounts:  make(map[int64]int64),
		nextID:      1,
	}
}

func (m *mockDepartmentRepository) add(dept *department.Department) *department.Department {
	if dept.ID == 0 {
		dept.ID = m.nextID
		m.nextID++
	}
	m.departments[dept.ID] = dept
	m.byName[dept.Name] = dept
	return dept
}

func (m *mockDepartmentRepository) Create(dept *department.Department) error {
	m.add(dept)
	return nil
}

func (m *mockDepartmentRepository) GetByID(id int64) (*department.Department, error) {
	dept, ok := m.departments[id]
	if !ok {
		return nil, errors.New("department not found")
	}
	return dept, nil
}

func (m *mockDepartmentRepository) GetByName(name string) (*department.Department, error) {
	dept, ok := m.byName[name]
	if !ok {
		return nil, errors.New("department not found")
	}
	return dept, nil
}

func (m *mockDepartmentRepository) GetAll() ([]*department.Department, error) {
	out := make([]*department.Department, 0, len(m.departments))
	for _, dept := range m.departments {
		out = append(out, dept)
	}
	return out, nil
}

func (m *mockDepartmentRepository) Update(dept *department.Department) error {
	m.departments[dept.ID] = dept
	return nil
}

func (m *mockDepartmentRepository) Delete(id int64) error {
	dept, ok := m.departments[id]
	if !ok {
		return errors.New("department not found")
	}
	delete(m.byName, dept.Name)
	delete(m.departments, id)
	return nil
}

func (m *mockDepartmentRepository) CountEmployees(id int64) (int64, error) {
	return m.headcounts[id], nil
}

type mockRecorder struct {
	entries []audit.Entry
}

func (m *mockRecorder) Record(_ context.Context, entry audit.Entry) {
	m.entries = append(m.entries, entry)
}

var _ = Describe("Department Service", func() {
	var (
		repo     *mockDepartmentRepository
		recorder *mockRecorder
		service  *department.Service
		ctx      context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockDepartmentRepository()
		recorder = &mockRecorder{}
		service = department.NewService(repo, recorder, testLogger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("creates a department", func() {
			dept, err := service.Create(ctx, department.CreateDepartmentDTO{
				Name:        "IT",
				Description: "Infrastructure and support",
			}, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(dept.ID).To(BeNumerically(">", 0))
			Expect(recorder.entries).To(HaveLen(1))
		})

		It("rejects a duplicate name", func() {
			repo.add(&department.Department{Name: "IT"})

			_, err := service.Create(ctx, department.CreateDepartmentDTO{Name: "IT"}, 1)
			Expect(err).To(Equal(department.ErrDepartmentNameTaken))
		})
	})

	Describe("Update", func() {
		It("refuses to rename onto an existing name", func() {
			repo.add(&department.Department{Name: "IT"})
			dept := repo.add(&department.Department{Name: "Accounting"})

			_, err := service.Update(ctx, dept.ID, department.UpdateDepartmentDTO{Name: "IT"}, 1)
			Expect(err).To(Equal(department.ErrDepartmentNameTaken))
		})

		It("allows keeping the same name", func() {
			dept := repo.add(&department.Department{Name: "IT"})

			updated, err := service.Update(ctx, dept.ID, department.UpdateDepartmentDTO{
				Name:        "IT",
				Description: "renamed description",
			}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal("renamed description"))
		})
	})

	Describe("Delete", func() {
		It("refuses while employees remain, archived ones included", func() {
			dept := repo.add(&department.Department{Name: "IT"})
			repo.headcounts[dept.ID] = 2

			err := service.Delete(ctx, dept.ID, 1)
			Expect(err).To(Equal(department.ErrDepartmentInUse))
			Expect(repo.departments).To(HaveKey(dept.ID))
		})

		It("deletes an empty department and audits it", func() {
			dept := repo.add(&department.Department{Name: "IT"})

			Expect(service.Delete(ctx, dept.ID, 1)).To(Succeed())
			Expect(repo.departments).To(BeEmpty())
			Expect(recorder.entries).To(HaveLen(1))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionDelete))
		})

		It("fails for an unknown department", func() {
			Expect(service.Delete(ctx, 404, 1)).To(Equal(department.ErrDepartmentNotFound))
		})
	})
})
