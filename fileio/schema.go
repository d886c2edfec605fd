package fileio

// Schema names the sheets and columns read from the input workbooks
type Schema struct {
	// feature directory
	FeatureProduct string `yaml:"feature_product" json:"feature_product"`
	FeatureName    string `yaml:"feature_name" json:"feature_name"`

	// user directory
	UserSheet     string `yaml:"user_sheet" json:"user_sheet"`
	UserLastName  string `yaml:"user_last_name" json:"user_last_name"`
	UserFirstName string `yaml:"user_first_name" json:"user_first_name"`
	UserProject   string `yaml:"user_project" json:"user_project"`
	UserOrg       string `yaml:"user_org" json:"user_org"`
	UserEmail     string `yaml:"user_email" json:"user_email"`
	UserNotes     string `yaml:"user_notes" json:"user_notes"`
	UserRemoved   string `yaml:"user_removed" json:"user_removed"`

	// usage log
	UsageUser    string `yaml:"usage_user" json:"usage_user"`
	UsageProduct string `yaml:"usage_product" json:"usage_product"`
	UsageFeature string `yaml:"usage_feature" json:"usage_feature"`
	UsageEmail   string `yaml:"usage_email" json:"usage_email"`
	UsageHours   string `yaml:"usage_hours" json:"usage_hours"`
	UsageStart   string `yaml:"usage_start" json:"usage_start"`
	UsageEnd     string `yaml:"usage_end" json:"usage_end"`
}

// DefaultSchema returns the layout of the lab's standard exports
func DefaultSchema() Schema {
	return Schema{
		FeatureProduct: "Product",
		FeatureName:    "Feature",

		UserSheet:     "Admin-User List",
		UserLastName:  "LAST NAME",
		UserFirstName: "FIRST NAME",
		UserProject:   "PROJECT NAME",
		UserOrg:       "ORGANIZATION",
		UserEmail:     "microelectornics.us E-MAIL",
		UserNotes:     "NOTES",
		UserRemoved:   "remove",

		UsageUser:    "User Name",
		UsageProduct: "Product",
		UsageFeature: "Feature",
		UsageEmail:   "Email",
		UsageHours:   "Total usage time (hours)",
		UsageStart:   "Start Time",
		UsageEnd:     "End Time",
	}
}

// withDefaults fills empty names from DefaultSchema
func (s Schema) withDefaults() Schema {
	d := DefaultSchema()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.FeatureProduct, d.FeatureProduct)
	fill(&s.FeatureName, d.FeatureName)
	fill(&s.UserSheet, d.UserSheet)
	fill(&s.UserLastName, d.UserLastName)
	fill(&s.UserFirstName, d.UserFirstName)
	fill(&s.UserProject, d.UserProject)
	fill(&s.UserOrg, d.UserOrg)
	fill(&s.UserEmail, d.UserEmail)
	fill(&s.UserNotes, d.UserNotes)
	fill(&s.UserRemoved, d.UserRemoved)
	fill(&s.UsageUser, d.UsageUser)
	fill(&s.UsageProduct, d.UsageProduct)
	fill(&s.UsageFeature, d.UsageFeature)
	fill(&s.UsageEmail, d.UsageEmail)
	fill(&s.UsageHours, d.UsageHours)
	fill(&s.UsageStart, d.UsageStart)
	fill(&s.UsageEnd, d.UsageEnd)
	return s
}
