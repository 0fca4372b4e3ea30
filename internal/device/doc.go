// Package device provides the radio device catalogue for Radio Loan Core.
//
// The catalogue holds every radio in the organisation's pool with its call
// sign and lifecycle status:
//
//	AVAILABLE ──borrow──▶ ON_LOAN ──return──▶ AVAILABLE
//	    │  ▲
//	    ▼  │  (catalogue)
//	DEFECT / MAINTENANCE
//
// Borrow and return transitions are performed by package loan. This package
// only creates devices, lists them, and moves devices between AVAILABLE,
// DEFECT and MAINTENANCE. Its status update is guarded so it never touches a
// device that is ON_LOAN, and it refuses ON_LOAN as a target.
//
// # Key Types
//
//   - Device: a radio with ID, call sign, status and timestamps
//   - Summary: the {id, call_sign, status} projection embedded in loans
//   - Status: AVAILABLE, ON_LOAN, DEFECT or MAINTENANCE
//   - Repository / SQLRepository: persistence on sqlite3, postgres or mysql
//
// # Usage
//
//	repo := device.NewSQLRepository(db)
//	d := &device.Device{CallSign: "Florian 1/83-1"}
//	if err := repo.Create(ctx, d); err != nil {
//	    return err
//	}
//	_, err := repo.SetStatus(ctx, d.ID, device.StatusMaintenance)
package device
