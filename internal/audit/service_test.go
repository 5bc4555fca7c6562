package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KarlovS28/dela/internal/audit"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

// Mock repository for testing
type mockAuditRepository struct {
	rows        []*audit.AuditLog
	createError error
	lastFilter  audit.Filter
	nextID      int64
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{nextID: 1}
}

func (m *mockAuditRepository) Create(entry *audit.AuditLog) error {
	if m.createError != nil {
		return m.createError
	}
	entry.ID = m.nextID
	m.nextID++
	m.rows = append(m.rows, entry)
	return nil
}

func (m *mockAuditRepository) List(filter audit.Filter) ([]*audit.AuditLog, error) {
	m.lastFilter = filter
	out := make([]*audit.AuditLog, len(m.rows))
	copy(out, m.rows)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ = Describe("Audit Service", func() {
	var (
		repo    *mockAuditRepository
		service *audit.Service
		ctx     context.Context
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		repo = newMockAuditRepository()
		service = audit.NewService(repo, testLogger)
		ctx = context.Background()
	})

	Describe("Record", func() {
		It("persists the entry with marshalled snapshots", func() {
			service.Record(ctx, audit.Entry{
				Action:      audit.ActionUpdate,
				EntityType:  audit.EntityEmployee,
				EntityID:    7,
				ActorID:     1,
				OldValue:    map[string]any{"position": "engineer"},
				NewValue:    map[string]any{"position": "lead"},
				Description: "updated employee",
			})

			Expect(repo.rows).To(HaveLen(1))
			row := repo.rows[0]
			Expect(row.Action).To(Equal(audit.ActionUpdate))
			Expect(string(row.OldValue)).To(ContainSubstring("engineer"))
			Expect(string(row.NewValue)).To(ContainSubstring("lead"))
		})

		It("leaves snapshots empty when the entry has none", func() {
			service.Record(ctx, audit.Entry{
				Action:     audit.ActionCreate,
				EntityType: audit.EntityRole,
				EntityID:   3,
				ActorID:    1,
			})

			Expect(repo.rows).To(HaveLen(1))
			Expect(repo.rows[0].OldValue).To(BeNil())
			Expect(repo.rows[0].NewValue).To(BeNil())
		})

		It("swallows persistence failures", func() {
			repo.createError = errors.New("disk full")

			Expect(func() {
				service.Record(ctx, audit.Entry{
					Action:     audit.ActionDelete,
					EntityType: audit.EntityEquipment,
					EntityID:   9,
					ActorID:    1,
				})
			}).NotTo(Panic())
			Expect(repo.rows).To(BeEmpty())
		})
	})

	Describe("List", func() {
		record := func(n int) {
			for i := 0; i < n; i++ {
				service.Record(ctx, audit.Entry{
					Action:     audit.ActionCreate,
					EntityType: audit.EntityEmployee,
					EntityID:   int64(i + 1),
					ActorID:    1,
				})
			}
		}

		It("returns entries newest first", func() {
			record(3)

			entries, err := service.List(audit.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].ID).To(BeNumerically(">", entries[1].ID))
			Expect(entries[1].ID).To(BeNumerically(">", entries[2].ID))
		})

		It("defaults the limit to 50", func() {
			record(1)

			_, err := service.List(audit.Filter{})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(50))
		})

		It("caps oversized limits", func() {
			record(1)

			_, err := service.List(audit.Filter{Limit: 10000})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Limit).To(Equal(50))
		})

		It("clamps a negative offset", func() {
			record(1)

			_, err := service.List(audit.Filter{Offset: -5})
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.Offset).To(Equal(0))
		})
	})
})
