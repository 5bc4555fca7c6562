package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KarlovS28/dela/internal/employee"
	"github.com/KarlovS28/dela/internal/equipment"
)

func TestEmployeeRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "EmployeeRepository Suite")
}

type SQLiteEmployee struct {
	ID             int64     `gorm:"primaryKey"`
	FullName       string    `gorm:"column:full_name;not null"`
	Position       string    `gorm:"column:position"`
	Grade          string    `gorm:"column:grade"`
	DepartmentID   *int64    `gorm:"column:department_id"`
	PassportNumber string    `gorm:"column:passport_number"`
	Snils          string    `gorm:"column:snils"`
	Phone          string    `gorm:"column:phone"`
	Email          string    `gorm:"column:email"`
	IsArchived     bool      `gorm:"column:is_archived;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (SQLiteEmployee) TableName() string {
	return "employees"
}

type SQLiteEquipment struct {
	ID               int64     `gorm:"primaryKey"`
	InventoryNumber  string    `gorm:"column:inventory_number;uniqueIndex;not null"`
	Name             string    `gorm:"column:name;not null"`
	Category         string    `gorm:"column:category"`
	CostKopecks      int64     `gorm:"column:cost_kopecks"`
	EmployeeID       *int64    `gorm:"column:employee_id"`
	IsDecommissioned bool      `gorm:"column:is_decommissioned;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (SQLiteEquipment) TableName() string {
	return "equipment"
}

var _ = Describe("EmployeeRepository", func() {
	var (
		db   *gorm.DB
		repo employee.Repository
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteEmployee{}, &SQLiteEquipment{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewEmployeeRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	createEmployee := func(name string) *employee.Employee {
		emp := &employee.Employee{FullName: name, Position: "engineer"}
		Expect(repo.Create(emp)).To(Succeed())
		return emp
	}

	assignItem := func(number string, employeeID *int64, decommissioned bool) *equipment.Equipment {
		item := &equipment.Equipment{
			InventoryNumber:  number,
			Name:             "item " + number,
			Category:         equipment.CategoryTechnika,
			EmployeeID:       employeeID,
			IsDecommissioned: decommissioned,
		}
		Expect(db.Create(item).Error).To(Succeed())
		return item
	}

	Describe("Create and GetByID", func() {
		It("should round-trip an employee", func() {
			emp := createEmployee("Ivan Petrov")
			Expect(emp.ID).To(BeNumerically(">", 0))

			found, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.FullName).To(Equal("Ivan Petrov"))
			Expect(found.IsArchived).To(BeFalse())
		})

		It("should return ErrEmployeeNotFound for a missing id", func() {
			_, err := repo.GetByID(99999)
			Expect(err).To(Equal(employee.ErrEmployeeNotFound))
		})
	})

	Describe("List", func() {
		It("should keep active and archived rosters disjoint", func() {
			createEmployee("Ivan Petrov")
			archived := createEmployee("Anna Sidorova")
			archived.IsArchived = true
			Expect(repo.Update(archived)).To(Succeed())

			active, err := repo.List(false, 0, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].FullName).To(Equal("Ivan Petrov"))

			gone, err := repo.List(true, 0, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(gone).To(HaveLen(1))
			Expect(gone[0].FullName).To(Equal("Anna Sidorova"))
		})

		It("should filter by department", func() {
			deptID := int64(3)
			emp := createEmployee("Ivan Petrov")
			emp.DepartmentID = &deptID
			Expect(repo.Update(emp)).To(Succeed())
			createEmployee("Anna Sidorova")

			inDept, err := repo.List(false, deptID, 50, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(inDept).To(HaveLen(1))
			Expect(inDept[0].FullName).To(Equal("Ivan Petrov"))
		})
	})

	Describe("ArchiveWithEquipment", func() {
		It("should archive the employee and return only their assigned items", func() {
			emp := createEmployee("Ivan Petrov")
			other := createEmployee("Anna Sidorova")

			assignItem("INV-001", &emp.ID, false)
			assignItem("INV-002", &emp.ID, false)
			assignItem("INV-003", &other.ID, false)
			assignItem("INV-004", nil, true)

			returned, err := repo.ArchiveWithEquipment(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(returned).To(HaveLen(2))

			numbers := []string{returned[0].InventoryNumber, returned[1].InventoryNumber}
			Expect(numbers).To(ConsistOf("INV-001", "INV-002"))

			archived, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(archived.IsArchived).To(BeTrue())

			var held int64
			Expect(db.Model(&equipment.Equipment{}).
				Where("employee_id = ?", emp.ID).
				Count(&held).Error).To(Succeed())
			Expect(held).To(BeZero())

			var othersItem equipment.Equipment
			Expect(db.Where("inventory_number = ?", "INV-003").First(&othersItem).Error).To(Succeed())
			Expect(othersItem.EmployeeID).To(HaveValue(Equal(other.ID)))
		})

		It("should succeed with an empty cascade for an employee holding nothing", func() {
			emp := createEmployee("Ivan Petrov")

			returned, err := repo.ArchiveWithEquipment(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(returned).To(BeEmpty())

			archived, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(archived.IsArchived).To(BeTrue())
		})
	})

	Describe("CountAssignedEquipment", func() {
		It("should ignore decommissioned items", func() {
			emp := createEmployee("Ivan Petrov")
			assignItem("INV-001", &emp.ID, false)
			assignItem("INV-002", nil, true)

			count, err := repo.CountAssignedEquipment(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("Delete", func() {
		It("should remove the row", func() {
			emp := createEmployee("Ivan Petrov")

			Expect(repo.Delete(emp.ID)).To(Succeed())

			_, err := repo.GetByID(emp.ID)
			Expect(err).To(Equal(employee.ErrEmployeeNotFound))
		})
	})
})
