package record

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	record *Record
	err    error
	calls  int
	fields []string
}

func (f *fakeFetcher) FetchRecord(ctx context.Context, id string, fields []string) (*Record, error) {
	f.calls++
	f.fields = fields
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func sampleLead() *Record {
	return &Record{
		ID: "00Q1",
		Fields: map[string]any{
			"Lead.Name":      "Ada Lovelace",
			"Lead.FirstName": "Ada",
			"Lead.LastName":  "Lovelace",
			"Lead.Email":     "ada@example.com",
			"Lead.Phone":     "5551234567",
			"Lead.Company":   "Analytical Engines",
			"Lead.Website":   "engines.example",
			"Lead.Status":    "Open - Not Contacted",
			"Lead.Rating":    "Hot",
		},
	}
}

func TestLeadLayout_Fields(t *testing.T) {
	fields := LeadLayout().Fields()

	assert.Len(t, fields, 28)
	assert.Equal(t, "Lead.FirstName", fields[0])
	assert.Equal(t, "Lead.Name", fields[len(fields)-1])
	assert.Contains(t, fields, "Lead.Company_Growth_Status__c")
}

func TestViewer_Load(t *testing.T) {
	fetcher := &fakeFetcher{record: sampleLead()}
	v := NewViewer(fetcher, "00Q1", LeadLayout(), NewFormatter(""))

	assert.True(t, v.IsLoading())
	assert.Empty(t, v.Group(GroupPerson))

	require.NoError(t, v.Load(context.Background()))
	assert.False(t, v.IsLoading())
	assert.NoError(t, v.Err())
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, LeadLayout().Fields(), fetcher.fields)

	want := Header{Name: "Ada Lovelace", Status: "Open - Not Contacted", Rating: "Hot", Company: "Analytical Engines"}
	assert.Equal(t, want, v.Header())

	person := v.Group(GroupPerson)
	require.Len(t, person, 9)
	assert.Equal(t, Field{Name: "Lead.FirstName", Label: "First Name", Value: Value{Kind: KindText, Text: "Ada"}}, person[0])
	assert.Equal(t, "mailto:ada@example.com", person[4].Value.Target)
	assert.Equal(t, "555-123-456-7", person[5].Value.Text)
	assert.True(t, person[6].Value.IsEmpty())

	company := v.Group(GroupCompany)
	assert.Equal(t, "https://engines.example", company[1].Value.Target)

	names := make([]string, 0)
	for _, g := range v.Groups() {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{GroupPerson, GroupCompany, GroupSystem}, names); diff != "" {
		t.Errorf("group names mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, v.Group("Unknown"))
}

func TestViewer_LoadError(t *testing.T) {
	notFound := errors.New("record not found")
	fetcher := &fakeFetcher{err: notFound}
	v := NewViewer(fetcher, "missing", LeadLayout(), NewFormatter(""))

	err := v.Load(context.Background())
	assert.ErrorIs(t, err, notFound)
	assert.False(t, v.IsLoading())
	assert.ErrorIs(t, v.Err(), notFound)
	assert.Equal(t, Header{}, v.Header())
	for _, g := range v.Groups() {
		assert.Empty(t, g.Fields)
	}
	assert.Equal(t, 1, fetcher.calls, "no automatic retry")
}

func TestViewer_Reload(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("timeout")}
	v := NewViewer(fetcher, "00Q1", LeadLayout(), NewFormatter(""))
	require.Error(t, v.Load(context.Background()))

	fetcher.err = nil
	fetcher.record = sampleLead()
	require.NoError(t, v.Reload(context.Background()))

	assert.NoError(t, v.Err())
	assert.Equal(t, "Ada Lovelace", v.Header().Name)
	assert.Equal(t, 2, fetcher.calls)
}

func TestRecord_GetQualified(t *testing.T) {
	r := sampleLead()
	assert.Equal(t, "Ada", r.Get("Lead.FirstName"))
	assert.Nil(t, r.Get("FirstName"))
	assert.Nil(t, r.Get("Nope"))

	shared := &Record{Fields: map[string]any{
		"Lead.Name":    "Ada Lovelace",
		"Account.Name": "Analytical Engines",
	}}
	for i := 0; i < 20; i++ {
		assert.Equal(t, "Ada Lovelace", shared.Get("Lead.Name"))
		assert.Equal(t, "Analytical Engines", shared.Get("Account.Name"))
	}
	assert.Nil(t, shared.Get("Name"))

	var nilRecord *Record
	assert.Nil(t, nilRecord.Get("FirstName"))
}
