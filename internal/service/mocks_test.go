package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/alisoleah/qr-ordering-api/internal/database"
)

// --- Mock pool / tx ---

type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (m *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Conn() *pgx.Conn { return nil }

type mockPool struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// --- Decimal helpers (for tests) ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, _ := decimal.NewFromString(val.(string))
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- In-memory store ---

// memStore is a map-backed stand-in for *database.Queries. Lists preserve
// insertion order so assertions stay deterministic.
type memStore struct {
	restaurant database.Restaurant

	tables    map[uuid.UUID]database.Table
	menuItems map[uuid.UUID]database.MenuItem
	orders    map[uuid.UUID]database.Order
	orderIDs  []uuid.UUID
	items     map[uuid.UUID]database.OrderItem
	itemIDs   []uuid.UUID
	splits    map[uuid.UUID]database.BillSplit
	persons   map[uuid.UUID]database.Person
	personIDs []uuid.UUID
	txns      map[uuid.UUID]database.PaymentTransaction
	txnItems  map[uuid.UUID][]uuid.UUID

	nextOrderNum int32
}

func newMemStore() *memStore {
	return &memStore{
		restaurant: database.Restaurant{
			ID:                uuid.New(),
			Name:              "Test Restaurant",
			TaxRate:           decimalToNumericRaw("0.1000"),
			ServiceChargeRate: decimalToNumericRaw("0.0500"),
			Currency:          "USD",
			IsActive:          true,
		},
		tables:       make(map[uuid.UUID]database.Table),
		menuItems:    make(map[uuid.UUID]database.MenuItem),
		orders:       make(map[uuid.UUID]database.Order),
		items:        make(map[uuid.UUID]database.OrderItem),
		splits:       make(map[uuid.UUID]database.BillSplit),
		persons:      make(map[uuid.UUID]database.Person),
		txns:         make(map[uuid.UUID]database.PaymentTransaction),
		txnItems:     make(map[uuid.UUID][]uuid.UUID),
		nextOrderNum: 1,
	}
}

func decimalToNumericRaw(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

// --- Fixture builders ---

func (m *memStore) addTable(number string, status database.TableStatus) database.Table {
	t := database.Table{
		ID:           uuid.New(),
		RestaurantID: m.restaurant.ID,
		TableNumber:  number,
		Capacity:     4,
		Status:       status,
	}
	m.tables[t.ID] = t
	return t
}

func (m *memStore) addMenuItem(name, price string) database.MenuItem {
	mi := database.MenuItem{
		ID:           uuid.New(),
		RestaurantID: m.restaurant.ID,
		CategoryID:   uuid.New(),
		Name:         name,
		Price:        decimalToNumeric(mustDecimal(price)),
		IsAvailable:  true,
	}
	m.menuItems[mi.ID] = mi
	return mi
}

// addOrder inserts an order with one item per (menuItem, quantity) pair,
// bypassing the order service.
func (m *memStore) addOrder(tableID uuid.UUID, lines map[uuid.UUID]int32) (database.Order, []database.OrderItem) {
	subtotal := decimal.Zero
	o := database.Order{
		ID:            uuid.New(),
		RestaurantID:  m.restaurant.ID,
		TableID:       tableID,
		OrderNumber:   fmt.Sprintf("TBL-%03d", m.nextOrderNum),
		Status:        database.OrderStatusPENDING,
		PaymentStatus: database.PaymentStatusPENDING,
		CreatedAt:     time.Now(),
	}
	m.nextOrderNum++

	var items []database.OrderItem
	for menuItemID, qty := range lines {
		mi := m.menuItems[menuItemID]
		unit := numericToDecimal(mi.Price)
		total := unit.Mul(decimal.NewFromInt32(qty))
		subtotal = subtotal.Add(total)
		item := database.OrderItem{
			ID:         uuid.New(),
			OrderID:    o.ID,
			MenuItemID: menuItemID,
			Quantity:   qty,
			UnitPrice:  decimalToNumeric(unit),
			TotalPrice: decimalToNumeric(total),
			CreatedAt:  time.Now(),
		}
		m.items[item.ID] = item
		m.itemIDs = append(m.itemIDs, item.ID)
		items = append(items, item)
	}

	o.Subtotal = decimalToNumeric(subtotal)
	o.Total = decimalToNumeric(subtotal)
	m.orders[o.ID] = o
	m.orderIDs = append(m.orderIDs, o.ID)
	return o, items
}

func (m *memStore) addSplit(tableID uuid.UUID, totalPeople int32) (database.BillSplit, []database.Person) {
	split := database.BillSplit{
		ID:          uuid.New(),
		TableID:     tableID,
		SessionID:   uuid.NewString(),
		TotalPeople: totalPeople,
		IsActive:    true,
	}
	m.splits[split.ID] = split

	var persons []database.Person
	for n := int32(1); n <= totalPeople; n++ {
		p, _ := m.CreatePerson(context.Background(), database.CreatePersonParams{
			BillSplitID:  split.ID,
			PersonNumber: n,
			QrCode:       fmt.Sprintf("qr://%s/%d", split.SessionID, n),
		})
		persons = append(persons, p)
	}
	return split, persons
}

// --- Restaurant / table queries ---

func (m *memStore) GetDefaultRestaurant(_ context.Context) (database.Restaurant, error) {
	return m.restaurant, nil
}

func (m *memStore) GetTable(_ context.Context, id uuid.UUID) (database.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *memStore) GetTableByNumber(_ context.Context, arg database.GetTableByNumberParams) (database.Table, error) {
	for _, t := range m.tables {
		if t.RestaurantID == arg.RestaurantID && t.TableNumber == arg.TableNumber {
			return t, nil
		}
	}
	return database.Table{}, pgx.ErrNoRows
}

func (m *memStore) GetTableForUpdate(ctx context.Context, id uuid.UUID) (database.Table, error) {
	return m.GetTable(ctx, id)
}

func (m *memStore) UpdateTableStatus(_ context.Context, arg database.UpdateTableStatusParams) (database.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok {
		return database.Table{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	m.tables[arg.ID] = t
	return t, nil
}

// --- Menu queries ---

func (m *memStore) GetMenuItemForOrder(_ context.Context, id uuid.UUID) (database.MenuItem, error) {
	mi, ok := m.menuItems[id]
	if !ok || !mi.IsAvailable {
		return database.MenuItem{}, pgx.ErrNoRows
	}
	return mi, nil
}

// --- Order queries ---

func (m *memStore) GetNextOrderNumber(_ context.Context, _ uuid.UUID) (int32, error) {
	return m.nextOrderNum, nil
}

func (m *memStore) CreateOrder(_ context.Context, arg database.CreateOrderParams) (database.Order, error) {
	o := database.Order{
		ID:            uuid.New(),
		RestaurantID:  arg.RestaurantID,
		TableID:       arg.TableID,
		OrderNumber:   arg.OrderNumber,
		BillSplitID:   arg.BillSplitID,
		PersonID:      arg.PersonID,
		Subtotal:      arg.Subtotal,
		Tax:           arg.Tax,
		ServiceCharge: arg.ServiceCharge,
		Tip:           arg.Tip,
		Total:         arg.Total,
		Status:        database.OrderStatusPENDING,
		PaymentStatus: database.PaymentStatusPENDING,
		CreatedAt:     time.Now(),
	}
	m.orders[o.ID] = o
	m.orderIDs = append(m.orderIDs, o.ID)
	m.nextOrderNum++
	return o, nil
}

func (m *memStore) CreateOrderItem(_ context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	item := database.OrderItem{
		ID:         uuid.New(),
		OrderID:    arg.OrderID,
		MenuItemID: arg.MenuItemID,
		Quantity:   arg.Quantity,
		UnitPrice:  arg.UnitPrice,
		TotalPrice: arg.TotalPrice,
		CreatedAt:  time.Now(),
	}
	m.items[item.ID] = item
	m.itemIDs = append(m.itemIDs, item.ID)
	return item, nil
}

func (m *memStore) GetOrder(_ context.Context, id uuid.UUID) (database.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *memStore) ConfirmOrderPayment(_ context.Context, arg database.ConfirmOrderPaymentParams) (database.Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return database.Order{}, pgx.ErrNoRows
	}
	o.PaymentStatus = database.PaymentStatusCOMPLETED
	o.Status = database.OrderStatusCONFIRMED
	if arg.PaymentMethod.Valid {
		o.PaymentMethod = arg.PaymentMethod
	}
	if arg.PaymentRef.Valid {
		o.PaymentRef = arg.PaymentRef
	}
	m.orders[arg.ID] = o
	return o, nil
}

func (m *memStore) ListOrdersByPerson(_ context.Context, arg database.ListOrdersByPersonParams) ([]database.Order, error) {
	var out []database.Order
	for _, id := range m.orderIDs {
		o := m.orders[id]
		if o.BillSplitID.Valid && o.BillSplitID.Bytes == arg.BillSplitID &&
			o.PersonID.Valid && o.PersonID.Bytes == arg.PersonID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) ListOrderItemsByOrder(_ context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	var out []database.OrderItem
	for _, id := range m.itemIDs {
		if it := m.items[id]; it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) CompleteTableOrders(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for id, o := range m.orders {
		if o.TableID == tableID && o.PaymentStatus != database.PaymentStatusCOMPLETED {
			o.PaymentStatus = database.PaymentStatusCOMPLETED
			o.Status = database.OrderStatusCONFIRMED
			m.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (m *memStore) UpdatePersonOrdersPayment(_ context.Context, arg database.UpdatePersonOrdersPaymentParams) (int64, error) {
	var n int64
	for id, o := range m.orders {
		if o.BillSplitID.Valid && o.BillSplitID.Bytes == arg.BillSplitID &&
			o.PersonID.Valid && o.PersonID.Bytes == arg.PersonID {
			o.PaymentStatus = database.PaymentStatusCOMPLETED
			o.Status = database.OrderStatusCONFIRMED
			o.PaymentMethod = arg.PaymentMethod
			o.PaymentRef = arg.PaymentRef
			m.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (m *memStore) ResetOrdersByTable(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for id, o := range m.orders {
		if o.TableID == tableID {
			o.PaymentStatus = database.PaymentStatusPENDING
			o.Status = database.OrderStatusPENDING
			o.PaymentMethod = pgtype.Text{}
			o.PaymentRef = pgtype.Text{}
			m.orders[id] = o
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteOrdersByTable(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	var kept []uuid.UUID
	for _, id := range m.orderIDs {
		if m.orders[id].TableID == tableID {
			delete(m.orders, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.orderIDs = kept
	return n, nil
}

// --- Order item queries ---

// currentSession reports whether the order is part of the table's current
// session: not failed, with at least one unpaid item.
func (m *memStore) currentSession(o database.Order) bool {
	if o.PaymentStatus == database.PaymentStatusFAILED {
		return false
	}
	for _, id := range m.itemIDs {
		if it := m.items[id]; it.OrderID == o.ID && !it.IsPaid {
			return true
		}
	}
	return false
}

func (m *memStore) sessionItems(tableID uuid.UUID, paid bool) []database.SessionItemRow {
	var out []database.SessionItemRow
	for _, id := range m.itemIDs {
		it := m.items[id]
		o := m.orders[it.OrderID]
		if o.TableID != tableID || !m.currentSession(o) || it.IsPaid != paid {
			continue
		}
		mi := m.menuItems[it.MenuItemID]
		out = append(out, database.SessionItemRow{
			OrderItemID: it.ID,
			OrderID:     it.OrderID,
			MenuItemID:  it.MenuItemID,
			Name:        mi.Name,
			ImageUrl:    mi.ImageUrl,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			PaidAt:      it.PaidAt,
		})
	}
	return out
}

func (m *memStore) ListUnpaidSessionItems(_ context.Context, tableID uuid.UUID) ([]database.SessionItemRow, error) {
	return m.sessionItems(tableID, false), nil
}

func (m *memStore) ListPaidSessionItems(_ context.Context, tableID uuid.UUID) ([]database.SessionItemRow, error) {
	return m.sessionItems(tableID, true), nil
}

func (m *memStore) ListOrderItemsForSettlement(_ context.Context, ids []uuid.UUID) ([]database.SettlementItemRow, error) {
	seen := make(map[uuid.UUID]bool)
	var out []database.SettlementItemRow
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		it, ok := m.items[id]
		if !ok {
			continue
		}
		out = append(out, database.SettlementItemRow{
			ID:         it.ID,
			OrderID:    it.OrderID,
			TableID:    m.orders[it.OrderID].TableID,
			IsPaid:     it.IsPaid,
			TotalPrice: it.TotalPrice,
		})
	}
	return out, nil
}

func (m *memStore) MarkOrderItemsPaid(_ context.Context, arg database.MarkOrderItemsPaidParams) ([]uuid.UUID, error) {
	var marked []uuid.UUID
	for _, id := range arg.IDs {
		it, ok := m.items[id]
		if !ok || it.IsPaid {
			continue
		}
		it.IsPaid = true
		it.PaidAt = pgtype.Timestamptz{Time: arg.PaidAt, Valid: true}
		m.items[id] = it
		marked = append(marked, id)
	}
	return marked, nil
}

func (m *memStore) MarkOrderItemsPaidByOrder(_ context.Context, arg database.MarkOrderItemsPaidByOrderParams) (int64, error) {
	var n int64
	for _, id := range m.itemIDs {
		it := m.items[id]
		if it.OrderID == arg.OrderID && !it.IsPaid {
			it.IsPaid = true
			it.PaidAt = pgtype.Timestamptz{Time: arg.PaidAt, Valid: true}
			m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (m *memStore) CountUnpaidItemsByTable(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for _, id := range m.itemIDs {
		it := m.items[id]
		o := m.orders[it.OrderID]
		if o.TableID == tableID && o.PaymentStatus != database.PaymentStatusFAILED && !it.IsPaid {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ResetOrderItemsByTable(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for _, id := range m.itemIDs {
		it := m.items[id]
		if m.orders[it.OrderID].TableID == tableID {
			it.IsPaid = false
			it.PaidAt = pgtype.Timestamptz{}
			m.items[id] = it
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteOrderItemsByTable(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	var kept []uuid.UUID
	for _, id := range m.itemIDs {
		it := m.items[id]
		if o, ok := m.orders[it.OrderID]; ok && o.TableID == tableID {
			delete(m.items, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.itemIDs = kept
	return n, nil
}

// --- Bill split queries ---

func (m *memStore) CreateBillSplit(_ context.Context, arg database.CreateBillSplitParams) (database.BillSplit, error) {
	for _, s := range m.splits {
		if s.TableID == arg.TableID && s.IsActive {
			return database.BillSplit{}, &pgconn.PgError{Code: "23505", ConstraintName: "bill_splits_one_active_per_table"}
		}
	}
	split := database.BillSplit{
		ID:          uuid.New(),
		TableID:     arg.TableID,
		SessionID:   arg.SessionID,
		TotalPeople: arg.TotalPeople,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	m.splits[split.ID] = split
	return split, nil
}

func (m *memStore) DeactivateBillSplits(_ context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	for id, s := range m.splits {
		if s.TableID == tableID && s.IsActive {
			s.IsActive = false
			m.splits[id] = s
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetBillSplitBySession(_ context.Context, sessionID string) (database.BillSplit, error) {
	for _, s := range m.splits {
		if s.SessionID == sessionID {
			return s, nil
		}
	}
	return database.BillSplit{}, pgx.ErrNoRows
}

func (m *memStore) GetBillSplitForUpdate(ctx context.Context, sessionID string) (database.BillSplit, error) {
	return m.GetBillSplitBySession(ctx, sessionID)
}

func (m *memStore) UpdateBillSplitTotalPeople(_ context.Context, arg database.UpdateBillSplitTotalPeopleParams) (database.BillSplit, error) {
	s, ok := m.splits[arg.ID]
	if !ok {
		return database.BillSplit{}, pgx.ErrNoRows
	}
	s.TotalPeople = arg.TotalPeople
	m.splits[arg.ID] = s
	return s, nil
}

// --- Person queries ---

func (m *memStore) CreatePerson(_ context.Context, arg database.CreatePersonParams) (database.Person, error) {
	p := database.Person{
		ID:           uuid.New(),
		BillSplitID:  arg.BillSplitID,
		PersonNumber: arg.PersonNumber,
		Name:         arg.Name,
		QrCode:       arg.QrCode,
		TotalAmount:  decimalToNumeric(decimal.Zero),
		CreatedAt:    time.Now(),
	}
	m.persons[p.ID] = p
	m.personIDs = append(m.personIDs, p.ID)
	return p, nil
}

func (m *memStore) ListPersonsBySplit(_ context.Context, billSplitID uuid.UUID) ([]database.Person, error) {
	var out []database.Person
	for _, id := range m.personIDs {
		if p, ok := m.persons[id]; ok && p.BillSplitID == billSplitID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) GetPersonByNumber(_ context.Context, arg database.GetPersonByNumberParams) (database.Person, error) {
	for _, p := range m.persons {
		if p.BillSplitID == arg.BillSplitID && p.PersonNumber == arg.PersonNumber {
			return p, nil
		}
	}
	return database.Person{}, pgx.ErrNoRows
}

func (m *memStore) personHasOrders(personID uuid.UUID) bool {
	for _, o := range m.orders {
		if o.PersonID.Valid && o.PersonID.Bytes == personID {
			return true
		}
	}
	return false
}

func (m *memStore) ListBlockedPersonsAbove(_ context.Context, arg database.PersonsAboveParams) ([]database.Person, error) {
	var out []database.Person
	for _, id := range m.personIDs {
		p, ok := m.persons[id]
		if !ok || p.BillSplitID != arg.BillSplitID || p.PersonNumber <= arg.PersonNumber {
			continue
		}
		if p.IsCompleted || m.personHasOrders(p.ID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memStore) DeletePersonsAbove(_ context.Context, arg database.PersonsAboveParams) (int64, error) {
	var n int64
	var kept []uuid.UUID
	for _, id := range m.personIDs {
		p := m.persons[id]
		if p.BillSplitID == arg.BillSplitID && p.PersonNumber > arg.PersonNumber {
			delete(m.persons, id)
			n++
			continue
		}
		kept = append(kept, id)
	}
	m.personIDs = kept
	return n, nil
}

func (m *memStore) CompletePerson(_ context.Context, id uuid.UUID) (database.Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return database.Person{}, pgx.ErrNoRows
	}
	p.IsCompleted = true
	m.persons[id] = p
	return p, nil
}

func (m *memStore) AddPersonTotal(_ context.Context, arg database.AddPersonTotalParams) error {
	p, ok := m.persons[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	total := numericToDecimal(p.TotalAmount).Add(numericToDecimal(arg.Amount))
	p.TotalAmount = decimalToNumeric(total)
	m.persons[arg.ID] = p
	return nil
}

// --- Payment transaction queries ---

func (m *memStore) CreatePaymentTransaction(_ context.Context, arg database.CreatePaymentTransactionParams) (database.PaymentTransaction, error) {
	t := database.PaymentTransaction{
		ID:            uuid.New(),
		RestaurantID:  arg.RestaurantID,
		TableID:       arg.TableID,
		OrderID:       arg.OrderID,
		ReceiptNumber: arg.ReceiptNumber,
		PaymentMethod: arg.PaymentMethod,
		Provider:      arg.Provider,
		ProviderRef:   arg.ProviderRef,
		CustomerEmail: arg.CustomerEmail,
		Subtotal:      arg.Subtotal,
		Tax:           arg.Tax,
		ServiceCharge: arg.ServiceCharge,
		Tip:           arg.Tip,
		Total:         arg.Total,
		Status:        database.PaymentStatusCOMPLETED,
		CreatedAt:     time.Now(),
	}
	m.txns[t.ID] = t
	return t, nil
}

func (m *memStore) CreatePaymentTransactionItem(_ context.Context, arg database.CreatePaymentTransactionItemParams) error {
	m.txnItems[arg.TransactionID] = append(m.txnItems[arg.TransactionID], arg.OrderItemID)
	return nil
}
