package database

// Status values are plain strings CHECK-constrained in the schema.

type TableStatus string

const (
	TableStatusAVAILABLE    TableStatus = "AVAILABLE"
	TableStatusOCCUPIED     TableStatus = "OCCUPIED"
	TableStatusRESERVED     TableStatus = "RESERVED"
	TableStatusOUTOFSERVICE TableStatus = "OUT_OF_SERVICE"
)

type OrderStatus string

const (
	OrderStatusPENDING   OrderStatus = "PENDING"
	OrderStatusCONFIRMED OrderStatus = "CONFIRMED"
	OrderStatusPREPARING OrderStatus = "PREPARING"
	OrderStatusREADY     OrderStatus = "READY"
	OrderStatusCOMPLETED OrderStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentStatusPENDING   PaymentStatus = "PENDING"
	PaymentStatusCOMPLETED PaymentStatus = "COMPLETED"
	PaymentStatusFAILED    PaymentStatus = "FAILED"
)

const (
	UserRoleAdmin = "ADMIN"
	UserRoleStaff = "STAFF"
)
