package record

// Group names used by LeadLayout
const (
	GroupPerson  = "Person"
	GroupCompany = "Company"
	GroupSystem  = "System"
)

// Group is a named, ordered set of field API names
type Group struct {
	Name   string
	Fields []string
}

// HeaderFields names the fields shown above the groups
type HeaderFields struct {
	Name    string
	Status  string
	Rating  string
	Company string
}

// Layout describes which fields of an object are fetched and how they are
// grouped. Field names are unqualified API names.
type Layout struct {
	Object string
	Groups []Group
	Header HeaderFields
}

// LeadLayout is the layout of a Lead record
func LeadLayout() Layout {
	return Layout{
		Object: "Lead",
		Groups: []Group{
			{Name: GroupPerson, Fields: []string{
				"FirstName", "LastName", "Salutation", "Title", "Email",
				"Phone", "MobilePhone", "GenderIdentity", "Pronouns",
			}},
			{Name: GroupCompany, Fields: []string{
				"Company", "Website", "Industry", "Company_Growth_Status__c",
				"AnnualRevenue", "NumberOfEmployees", "NumberofLocations__c",
				"Publicly_Traded__c", "SICCode__c",
			}},
			{Name: GroupSystem, Fields: []string{
				"Status", "Rating", "CreatedDate", "LastModifiedDate",
				"ProductInterest__c", "Primary__c", "Id", "OwnerId", "Target_Date__c",
			}},
		},
		Header: HeaderFields{
			Name:    "Name",
			Status:  "Status",
			Rating:  "Rating",
			Company: "Company",
		},
	}
}

// Qualify prefixes a field name with the layout's object
func (l Layout) Qualify(field string) string {
	if l.Object == "" {
		return field
	}
	return l.Object + "." + field
}

// Fields returns every qualified field the layout needs, group fields first,
// without duplicates
func (l Layout) Fields() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(f string) {
		if f == "" {
			return
		}
		q := l.Qualify(f)
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	for _, g := range l.Groups {
		for _, f := range g.Fields {
			add(f)
		}
	}
	add(l.Header.Name)
	add(l.Header.Status)
	add(l.Header.Rating)
	add(l.Header.Company)
	return out
}
