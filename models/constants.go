package models

// Report column names
const (
	ColProject        = "Project"
	ColPerformer      = "Performer"
	ColVendor         = "Vendor"
	ColProduct        = "Product"
	ColProductFeature = "Product Feature"
	ColUser           = "User"
	ColTotalUsage     = "Total Usage Time"
	ColNumUsers       = "Number of Users"
	ColConcurrency    = "Concurrency (Estimated)"
)

// ReportWidth is the column count of both summary views
const ReportWidth = 9

// Column index of the total value in a summary row
const TotalColumn = ReportWidth - 3

var (
	// PerformerColumns is the header of the "by performer" view
	PerformerColumns = []string{
		ColProject, ColPerformer, ColVendor, ColProduct, ColProductFeature,
		ColUser, ColTotalUsage, ColNumUsers, ColConcurrency,
	}

	// ToolColumns is the header of the "by tool" view
	ToolColumns = []string{
		ColProject, ColVendor, ColProduct, ColProductFeature, ColPerformer,
		ColUser, ColTotalUsage, ColNumUsers, ColConcurrency,
	}
)

// Columns added to the usage sheet by the directory join
const (
	ColVendorName   = "Vendor Name"
	ColProductName  = "Product Name"
	ColOrganization = "Organization"
	ColProjectName  = "Project Name"
)

// Provisioning table columns
const (
	ProvProject         = "Project"
	ProvPerformer       = "Performer"
	ProvVendor          = "Vendor"
	ProvProduct         = "Product Feature"
	ProvCurrent         = "Current Provision"
	ProvConcurrentUsers = "Concurrent Users"
	ProvOver            = "Over Provision"
	ProvUnder           = "Under Provision"
	ProvAdequate        = "Adequate Provision"
	ProvUsageTime       = "Usage time (hours)"
)

// ProvisionColumns is the header of the reconciliation table
var ProvisionColumns = []string{
	ProvProject, ProvPerformer, ProvVendor, ProvProduct, ProvCurrent,
	ProvConcurrentUsers, ProvOver, ProvUnder, ProvAdequate, ProvUsageTime,
}

// Output sheet names
const (
	SheetPerformerSummary = "Performer Summary"
	SheetToolSummary      = "Tool Summary"
	SheetActualUsage      = "Actual Usage"
)

// ProcessedSuffix is appended to the usage workbook stem
const ProcessedSuffix = "-processed.xlsx"
