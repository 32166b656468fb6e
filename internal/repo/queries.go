package repo

// Plain inserts: a redelivered webhook produces a second orders row.
const (
	qInsertOrder = `
INSERT INTO orders (
  order_id, order_number, created_at, customer, shipping_name, shipping_phone,
  shipping_country, fulfillment_status, financial_status, cancelled_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`

	qInsertItem = `
INSERT INTO order_items (
  order_id, title, sim_type, sim_number, quantity, activation_plan
) VALUES ($1,$2,$3,$4,$5,$6)
`
)
