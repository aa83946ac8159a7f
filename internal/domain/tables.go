package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	&SysUserLog{},
	// Catalog
	&Product{},
	&InventorySnapshot{},
	// Sales
	&Sale{},
	&SaleItem{},
}
