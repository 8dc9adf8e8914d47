package user

type Permission string

const (
	// Attendance
	PermissionAttendancePunch   Permission = "attendance.punch"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionQRCodeManage      Permission = "qr_code.manage"

	// Bills
	PermissionBillSubmit  Permission = "bill.submit"
	PermissionBillViewOwn Permission = "bill.view_own"
	PermissionBillViewAll Permission = "bill.view_all"
	PermissionBillDecide  Permission = "bill.decide"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionQRCodeManage,
		PermissionBillSubmit,
		PermissionBillViewOwn,
		PermissionBillViewAll,
		PermissionBillDecide,
	},
	RoleTeamLead: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionQRCodeManage,
		PermissionBillSubmit,
		PermissionBillViewOwn,
	},
	RoleEmployee: {
		PermissionAttendancePunch,
		PermissionAttendanceViewOwn,
		PermissionBillSubmit,
		PermissionBillViewOwn,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
