package equipment_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/equipment"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

// Mock repository for testing
type mockEquipmentRepository struct {
	items       map[int64]*equipment.Equipment
	byInventory map[string]*equipment.Equipment
	getError    error
	updateError error
	nextID      int64
}

func newMockEquipmentRepository() *mockEquipmentRepository {
	return &mockEquipmentRepository{
		items:       make(map[int64]*equipment.Equipment),
		byInventory: make(map[string]*equipment.Equipment),
		nextID:      1,
	}
}

func (m *mockEquipmentRepository) add(item *equipment.Equipment) *equipment.Equipment {
	if item.ID == 0 {
		item.ID = m.nextID
		m.nextID++
	}
	m.items[item.ID] = item
	m.byInventory[item.InventoryNumber] = item
	return item
}

func (m *mockEquipmentRepository) Create(item *equipment.Equipment) error {
	m.add(item)
	return nil
}

func (m *mockEquipmentRepository) GetByID(id int64) (*equipment.Equipment, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	item, ok := m.items[id]
	if !ok {
		return nil, equipment.ErrEquipmentNotFound
	}
	return item, nil
}

func (m *mockEquipmentRepository) GetByInventoryNumber(number string) (*equipment.Equipment, error) {
	item, ok := m.byInventory[number]
	if !ok {
		return nil, equipment.ErrEquipmentNotFound
	}
	return item, nil
}

func (m *mockEquipmentRepository) List(filter equipment.ListFilter) ([]*equipment.Equipment, error) {
	out := make([]*equipment.Equipment, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockEquipmentRepository) Update(item *equipment.Equipment) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockEquipmentRepository) UpdateState(id int64, employeeID *int64, decommissioned bool) error {
	if m.updateError != nil {
		return m.updateError
	}
	item, ok := m.items[id]
	if !ok {
		return errors.New("equipment not found")
	}
	item.EmployeeID = employeeID
	item.IsDecommissioned = decommissioned
	return nil
}

func (m *mockEquipmentRepository) Delete(id int64) error {
	item, ok := m.items[id]
	if !ok {
		return errors.New("equipment not found")
	}
	delete(m.byInventory, item.InventoryNumber)
	delete(m.items, id)
	return nil
}

// mockDirectory answers holder lookups from a fixed table.
type mockDirectory struct {
	employees map[int64]bool // id -> archived
}

func (m *mockDirectory) EmployeeExists(id int64) (bool, bool, error) {
	archived, ok := m.employees[id]
	return ok, archived, nil
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

var _ = Describe("Equipment Service", func() {
	var (
		repo      *mockEquipmentRepository
		directory *mockDirectory
		recorder  *mockRecorder
		service   *equipment.Service
		ctx       context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockEquipmentRepository()
		directory = &mockDirectory{employees: map[int64]bool{
			1: false,
			2: false,
			9: true, // archived
		}}
		recorder = &mockRecorder{}
		service = equipment.NewService(repo, directory, recorder, nil, testLogger)
		ctx = context.Background()
	})

	warehouseItem := func(number string) *equipment.Equipment {
		return repo.add(&equipment.Equipment{
			InventoryNumber: number,
			Name:            "ThinkPad T14",
			Category:        equipment.CategoryTechnika,
			CostKopecks:     9500000,
		})
	}

	assignedItem := func(number string, employeeID int64) *equipment.Equipment {
		item := warehouseItem(number)
		item.EmployeeID = &employeeID
		return item
	}

	Describe("Create", func() {
		It("registers a warehouse item when no employee is given", func() {
			item, err := service.Create(ctx, equipment.CreateEquipmentDTO{
				InventoryNumber: "INV-001",
				Name:            "ThinkPad T14",
				Category:        equipment.CategoryTechnika,
				CostKopecks:     9500000,
			}, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(item.IsInWarehouse()).To(BeTrue())
			Expect(recorder.entries).To(HaveLen(1))
		})

		It("rejects a duplicate inventory number", func() {
			warehouseItem("INV-001")

			_, err := service.Create(ctx, equipment.CreateEquipmentDTO{
				InventoryNumber: "INV-001",
				Name:            "Desk",
				Category:        equipment.CategoryFurniture,
			}, 1)
			Expect(err).To(Equal(equipment.ErrInventoryNumberTaken))
		})

		It("rejects an unknown category", func() {
			_, err := service.Create(ctx, equipment.CreateEquipmentDTO{
				InventoryNumber: "INV-002",
				Name:            "Mystery box",
				Category:        "vehicle",
			}, 1)
			Expect(err).To(HaveOccurred())
		})

		It("refuses an archived initial holder", func() {
			holderID := int64(9)
			_, err := service.Create(ctx, equipment.CreateEquipmentDTO{
				InventoryNumber: "INV-003",
				Name:            "Monitor",
				Category:        equipment.CategoryTechnika,
				EmployeeID:      &holderID,
			}, 1)
			Expect(err).To(Equal(equipment.ErrHolderArchived))
		})
	})

	Describe("AssignTo", func() {
		It("moves a warehouse item to an employee", func() {
			item := warehouseItem("INV-001")

			updated, err := service.AssignTo(ctx, item.ID, 1, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.EmployeeID).To(HaveValue(Equal(int64(1))))
			Expect(recorder.byAction(audit.ActionAssign)).To(HaveLen(1))
		})

		It("is a no-op when the item is already with that employee", func() {
			item := assignedItem("INV-001", 1)

			updated, err := service.AssignTo(ctx, item.ID, 1, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.EmployeeID).To(HaveValue(Equal(int64(1))))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("refuses when the item is held by someone else", func() {
			item := assignedItem("INV-001", 1)

			_, err := service.AssignTo(ctx, item.ID, 2, 5)
			Expect(err).To(Equal(equipment.ErrAlreadyAssigned))
		})

		It("refuses a decommissioned item", func() {
			item := warehouseItem("INV-001")
			item.IsDecommissioned = true

			_, err := service.AssignTo(ctx, item.ID, 1, 5)
			Expect(err).To(Equal(equipment.ErrDecommissioned))
		})

		It("refuses an unknown employee", func() {
			item := warehouseItem("INV-001")

			_, err := service.AssignTo(ctx, item.ID, 404, 5)
			Expect(err).To(Equal(equipment.ErrHolderNotFound))
		})

		It("refuses an archived employee", func() {
			item := warehouseItem("INV-001")

			_, err := service.AssignTo(ctx, item.ID, 9, 5)
			Expect(err).To(Equal(equipment.ErrHolderArchived))
		})
	})

	Describe("ReturnToWarehouse", func() {
		It("clears the holder", func() {
			item := assignedItem("INV-001", 1)

			updated, err := service.ReturnToWarehouse(ctx, item.ID, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.EmployeeID).To(BeNil())
			Expect(updated.IsInWarehouse()).To(BeTrue())
		})

		It("is idempotent from the warehouse state", func() {
			item := warehouseItem("INV-001")

			_, err := service.ReturnToWarehouse(ctx, item.ID, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(recorder.entries).To(BeEmpty())
		})

		It("refuses a decommissioned item", func() {
			item := warehouseItem("INV-001")
			item.IsDecommissioned = true

			_, err := service.ReturnToWarehouse(ctx, item.ID, 5)
			Expect(err).To(Equal(equipment.ErrDecommissioned))
		})
	})

	Describe("Decommission", func() {
		It("retires an assigned item and clears the holder", func() {
			item := assignedItem("INV-001", 1)

			updated, err := service.Decommission(ctx, item.ID, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsDecommissioned).To(BeTrue())
			Expect(updated.EmployeeID).To(BeNil())

			entries := recorder.byAction(audit.ActionDecommission)
			Expect(entries).To(HaveLen(1))
			before := entries[0].OldValue.(equipment.Snapshot)
			Expect(before.EmployeeID).To(HaveValue(Equal(int64(1))))
			Expect(before.IsDecommissioned).To(BeFalse())
			after := entries[0].NewValue.(equipment.Snapshot)
			Expect(after.EmployeeID).To(BeNil())
			Expect(after.IsDecommissioned).To(BeTrue())
		})

		It("fails on a second decommission", func() {
			item := warehouseItem("INV-001")

			_, err := service.Decommission(ctx, item.ID, 5)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Decommission(ctx, item.ID, 5)
			Expect(err).To(Equal(equipment.ErrDecommissioned))
		})

		It("leaves the item untouched when the state update fails", func() {
			item := assignedItem("INV-001", 1)
			repo.updateError = errors.New("connection reset")

			_, err := service.Decommission(ctx, item.ID, 5)
			Expect(err).To(HaveOccurred())
			Expect(item.IsDecommissioned).To(BeFalse())
			Expect(item.EmployeeID).To(HaveValue(Equal(int64(1))))
		})
	})

	Describe("Get", func() {
		It("reports a missing item as not found", func() {
			_, err := service.Get(404)
			Expect(err).To(Equal(equipment.ErrEquipmentNotFound))
		})

		It("surfaces a storage failure instead of not found", func() {
			repo.getError = errors.New("connection refused")

			_, err := service.Get(1)
			Expect(err).To(MatchError("connection refused"))
			Expect(err).NotTo(Equal(equipment.ErrEquipmentNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the record and audits the final snapshot", func() {
			item := warehouseItem("INV-001")

			Expect(service.Delete(ctx, item.ID, 5)).To(Succeed())
			Expect(repo.items).To(BeEmpty())

			_, err := service.Get(item.ID)
			Expect(err).To(Equal(equipment.ErrEquipmentNotFound))
			Expect(recorder.byAction(audit.ActionDelete)).To(HaveLen(1))
		})
	})
})
