package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"supervisor role", RoleSupervisor, true},
		{"technician role", RoleTechnician, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	supervisor := &User{Role: RoleSupervisor}
	technician := &User{Role: RoleTechnician}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can delete user", admin, "delete_user", true},
		{"admin can manage users", admin, "manage_users", true},
		{"admin can generate schedules", admin, "generate_schedules", true},

		// Supervisor permissions - everything except user management
		{"supervisor can generate schedules", supervisor, "generate_schedules", true},
		{"supervisor can delete template", supervisor, "delete_template", true},
		{"supervisor cannot delete user", supervisor, "delete_user", false},
		{"supervisor cannot manage users", supervisor, "manage_users", false},

		// Technician permissions - execution work plus read access
		{"technician can start execution", technician, "start_execution", true},
		{"technician can complete execution", technician, "complete_execution", true},
		{"technician can view schedules", technician, "view_schedules", true},
		{"technician cannot generate schedules", technician, "generate_schedules", false},
		{"technician cannot delete template", technician, "delete_template", false},

		// Viewer permissions - read only
		{"viewer can view schedules", viewer, "view_schedules", true},
		{"viewer can view stats", viewer, "view_stats", true},
		{"viewer cannot start execution", viewer, "start_execution", false},
		{"viewer cannot cancel schedule", viewer, "cancel_schedule", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("HasPermission(%s) for %s = %v, want %v", tt.action, tt.user.Role, result, tt.expected)
			}
		})
	}
}
