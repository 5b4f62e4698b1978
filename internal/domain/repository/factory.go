package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Clients() ClientRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	TimeEntries() TimeEntryRepository
}
