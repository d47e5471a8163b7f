package gen

// Shared lists for synthetic audit-log generation, organized by risk tier.

var Databases = []string{"FinanceDB", "CustomerDB", "HRDB", "AuditDB", "InventoryDB"}

var Modules = []string{"QueryRunner", "DataAnalysis", "Command", "Management", "ODBC", "Script", "Batch"}

var Hosts = []string{"workstation01", "server02", "laptop03", "desktop04", "mobile05"}

var HighRiskObjects = []string{
	"Salaries", "HR_Records", "SSN_Data", "Credit_Cards", "CustomerData", "AuditLog", "Payroll",
}

var MediumRiskObjects = []string{
	"Employees", "Orders", "Inventory", "Suppliers", "Products", "Accounts",
}

var LowRiskObjects = []string{
	"Categories", "Regions", "Lookup_Tables", "Config", "Temp_Data", "Logs",
}

var HighRiskSQL = []string{
	"DELETE FROM %s WHERE 1=1",
	"DROP TABLE %s",
	"UPDATE %s SET Amount = 0",
	"SELECT * FROM %s",
	"TRUNCATE TABLE %s",
	"ALTER TABLE %s DROP COLUMN SSN",
	"GRANT ALL PRIVILEGES ON *.* TO 'temp_user'@'%'",
	"DELETE FROM %s",
}

var MediumRiskSQL = []string{
	"UPDATE %s SET Status = 'Active' WHERE EmployeeID = 1001",
	"INSERT INTO %s VALUES (12345, 'Product A', 100)",
	"SELECT * FROM %s WHERE Category = 'Electronics'",
	"ALTER TABLE %s ADD COLUMN NewField VARCHAR(50)",
	"DELETE FROM %s WHERE OrderDate < '2024-01-01'",
	"CREATE INDEX idx_employee_dept ON %s(Department)",
	"UPDATE %s SET Quantity = Quantity - 10 WHERE ProductID = 555",
}

var LowRiskSQL = []string{
	"SELECT COUNT(*) FROM %s",
	"SELECT ProductName FROM %s WHERE Category = 'Books'",
	"INSERT INTO %s VALUES (GETDATE(), 'System startup')",
	"SELECT Region FROM %s",
	"UPDATE %s SET LastUpdate = GETDATE()",
}

var HighRiskContexts = []string{
	"Emergency data cleanup - unauthorized",
	"Bypass approval process - urgent",
	"Manual override - temporary fix",
	"Hotfix without change control",
	"Critical system repair - off hours",
	"Emergency access - bypass normal procedures",
}

var MediumRiskContexts = []string{
	"Routine maintenance - scheduled",
	"Data migration - CHG000123",
	"Performance optimization - approved",
	"System update - planned maintenance",
	"Report generation - monthly process",
	"Index rebuild - CHG000456",
}

var LowRiskContexts = []string{
	"Standard query - automated report",
	"Scheduled backup verification",
	"Regular data refresh - CHG000789",
	"Daily system check - routine",
	"Approved data export - REQ001234",
	"Standard maintenance - CHG000999",
}

var HighRiskPrograms = []string{"sqlcmd", "python", "PowerShell", "SSMS"}

var MediumRiskPrograms = []string{"SSMS", "Workbench", "DBeaver", "Excel"}

var LowRiskPrograms = []string{"SSMS", "Excel", "Workbench"}
