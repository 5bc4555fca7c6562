package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/KarlovS28/dela/internal/audit"
	"github.com/KarlovS28/dela/internal/auth"
	"github.com/KarlovS28/dela/internal/department"
	"github.com/KarlovS28/dela/internal/employee"
	"github.com/KarlovS28/dela/internal/equipment"
	"github.com/KarlovS28/dela/internal/notification"
	"github.com/KarlovS28/dela/internal/rbac"
	"github.com/KarlovS28/dela/internal/registration"
	"github.com/KarlovS28/dela/internal/transport/middleware"
	"github.com/KarlovS28/dela/internal/transport/swagger"
	"github.com/KarlovS28/dela/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	RBAC         *rbac.Handler
	Employee     *employee.Handler
	Equipment    *equipment.Handler
	Department   *department.Handler
	Audit        *audit.Handler
	Registration *registration.Handler
	Notification *notification.Handler
}

// RegisterAllRoutes mounts the full API. Everything under /api/v1 except
// health, login, refresh and registration submit requires a valid token;
// write routes additionally sit behind permission guards.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Self-service sign-up is the only unauthenticated write.
		r.Post("/registration", h.Registration.Submit)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.Me)

			pr.Route("/employees", func(er chi.Router) {
				er.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(rbac.PermEmployeesView))
					vr.Get("/", h.Employee.List)
					vr.Get("/archived", h.Employee.ListArchived)
					vr.Get("/{id}", h.Employee.Get)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEmployeesCreate))
					wr.Post("/", h.Employee.Create)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEmployeesEdit))
					wr.Put("/{id}", h.Employee.Update)
				})

				// The archive handler re-checks the permission in the
				// service so the denial is audited consistently.
				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEmployeesArchive))
					wr.Post("/{id}/archive", h.Employee.Archive)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEmployeesDelete))
					wr.Delete("/{id}", h.Employee.Delete)
				})
			})

			pr.Route("/equipment", func(er chi.Router) {
				er.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(rbac.PermEquipmentView))
					vr.Get("/", h.Equipment.List)
					vr.Get("/{id}", h.Equipment.Get)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentCreate))
					wr.Post("/", h.Equipment.Create)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentEdit))
					wr.Put("/{id}", h.Equipment.Update)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentAssign))
					wr.Post("/{id}/assign", h.Equipment.Assign)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentReturn))
					wr.Post("/{id}/return", h.Equipment.Return)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentDecommission))
					wr.Post("/{id}/decommission", h.Equipment.Decommission)
				})

				er.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermEquipmentDelete))
					wr.Delete("/{id}", h.Equipment.Delete)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(rbac.PermEmployeesView, rbac.PermDepartmentsManage))
					vr.Get("/", h.Department.List)
					vr.Get("/{id}", h.Department.Get)
				})

				dr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermDepartmentsManage))
					wr.Post("/", h.Department.Create)
					wr.Put("/{id}", h.Department.Update)
					wr.Delete("/{id}", h.Department.Delete)
				})
			})

			pr.Route("/roles", func(rr chi.Router) {
				rr.Group(func(vr chi.Router) {
					vr.Use(middleware.RequirePermissions(rbac.PermRolesView, rbac.PermRolesManage))
					vr.Get("/", h.RBAC.ListRoles)
					vr.Get("/{id}", h.RBAC.GetRole)
				})

				rr.Group(func(wr chi.Router) {
					wr.Use(middleware.RequirePermissions(rbac.PermRolesManage))
					wr.Post("/", h.RBAC.CreateRole)
					wr.Put("/{id}", h.RBAC.UpdateRole)
					wr.Delete("/{id}", h.RBAC.DeleteRole)
					wr.Post("/{id}/permissions", h.RBAC.GrantPermission)
					wr.Delete("/{id}/permissions", h.RBAC.RevokePermission)
				})
			})

			pr.Group(func(vr chi.Router) {
				vr.Use(middleware.RequirePermissions(rbac.PermRolesView, rbac.PermRolesManage))
				vr.Get("/permissions", h.RBAC.ListPermissions)
			})

			pr.Route("/users", func(ur chi.Router) {
				ur.Use(middleware.RequirePermissions(rbac.PermUsersManage))
				ur.Get("/", h.User.List)
				ur.Post("/", h.User.Create)
				ur.Get("/{id}", h.User.Get)
				ur.Patch("/{id}/role", h.User.ChangeRole)
				ur.Post("/{id}/deactivate", h.User.Deactivate)
				ur.Post("/{id}/activate", h.User.Activate)
				ur.Delete("/{id}", h.User.Delete)
			})

			pr.Route("/registration-requests", func(rr chi.Router) {
				rr.Use(middleware.RequirePermissions(rbac.PermRegistrationsManage))
				rr.Get("/", h.Registration.List)
				rr.Get("/{id}", h.Registration.Get)
				rr.Post("/{id}/approve", h.Registration.Approve)
				rr.Post("/{id}/reject", h.Registration.Reject)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(middleware.RequirePermissions(rbac.PermAuditView))
				ar.Get("/audit", h.Audit.List)
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.List)
				nr.Get("/unread-count", h.Notification.UnreadCount)
				nr.Post("/{id}/read", h.Notification.MarkRead)
				nr.Post("/read-all", h.Notification.MarkAllRead)
			})
		})
	})
}
