package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satenders/tender-indexer/internal/adapter"
	"github.com/satenders/tender-indexer/internal/domain"
	"github.com/satenders/tender-indexer/internal/textparse"
)

var testLoc = textparse.LocationFromOffset("+02:00")

func newTestRegistry() *Registry {
	return NewRegistry(testLoc, adapter.NewJSON(), adapter.NewJCS())
}

func TestRegistryCoversAllSources(t *testing.T) {
	r := newTestRegistry()
	for _, src := range []domain.Source{
		domain.SourceEskom,
		domain.SourceSanral,
		domain.SourceTransnet,
		domain.SourceEtenders,
	} {
		n, ok := r.ForSource(src)
		require.True(t, ok, "missing normalizer for %s", src)
		assert.Equal(t, src, n.Source())
	}

	_, ok := r.ForSource(domain.Source("sita"))
	assert.False(t, ok)
}

func TestEskomNormalize(t *testing.T) {
	raw := []byte(`[{
		"TenderID": "T-1",
		"enquiryNumber": "E1",
		"title": "Substation refurbishment",
		"scopeDetails": "  scope   text  ",
		"published": "2025-Oct-01 09:00:00",
		"closing": "2025-Nov-15 12:00:00",
		"readMore": "https://tenders.eskom.co.za/tender/X",
		"downloadLink": "https://tenders.eskom.co.za/DownloadAll?id=X"
	}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceEskom)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	tender := items[0].Tender
	assert.Equal(t, "T-1", tender.ExternalID)
	require.NotNil(t, tender.SourceTenderID)
	assert.Equal(t, "E1", *tender.SourceTenderID)
	require.NotNil(t, tender.Description)
	assert.Equal(t, "scope text", *tender.Description)
	assert.NotEmpty(t, tender.Hash)

	require.NotNil(t, tender.PublishedAt)
	assert.True(t, tender.PublishedAt.Equal(time.Date(2025, 10, 1, 9, 0, 0, 0, testLoc)))
	require.NotNil(t, tender.ClosingAt)
	assert.True(t, tender.ClosingAt.Equal(time.Date(2025, 11, 15, 12, 0, 0, 0, testLoc)))

	require.Len(t, items[0].Documents, 1)
	assert.Equal(t, "https://tenders.eskom.co.za/DownloadAll?id=X", items[0].Documents[0].URL)
	assert.Empty(t, items[0].Contacts)
}

func TestEskomSkipsRecordsWithoutID(t *testing.T) {
	raw := []byte(`[{"TenderID": "  ", "title": "orphan"}, {"TenderID": "T-2"}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceEskom)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "T-2", items[0].Tender.ExternalID)
}

func TestEskomMalformedPayload(t *testing.T) {
	n, _ := newTestRegistry().ForSource(domain.SourceEskom)
	_, err := n.Normalize([]byte(`"just a string"`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestEskomHashStability(t *testing.T) {
	raw := []byte(`[{"TenderID": "T-1", "title": "A", "closing": "2025-Nov-15 12:00:00"}]`)
	changed := []byte(`[{"TenderID": "T-1", "title": "B", "closing": "2025-Nov-15 12:00:00"}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceEskom)

	first, err := n.Normalize(raw)
	require.NoError(t, err)
	second, err := n.Normalize(raw)
	require.NoError(t, err)
	third, err := n.Normalize(changed)
	require.NoError(t, err)

	assert.Equal(t, first[0].Tender.Hash, second[0].Tender.Hash)
	assert.NotEqual(t, first[0].Tender.Hash, third[0].Tender.Hash)
}

func TestSanralProseExtraction(t *testing.T) {
	raw := []byte(`[{
		"reference": "SANRAL-001",
		"title": "N2 road rehabilitation",
		"description": "short",
		"region": "Eastern Cape",
		"queriesTo": "Queries: jane@example.co.za, 011 555 1234",
		"details": {
			"rawText": "N2 rehabilitation between Mthatha and Butterworth including drainage works and signage over a distance of 48 km.\nISSUE DATE: 1 August 2025\nCLOSING DATE: 20 August 2025 12:00\nBRIEFING SESSION: 14 August 2025 13:00-14:00 at Boardroom B, 12 Main Road\nTender documents: https://www.nra.co.za/docs/SANRAL-001.pdf"
		}
	}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceSanral)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	tender := items[0].Tender
	assert.Equal(t, "SANRAL-001", tender.ExternalID)

	require.NotNil(t, tender.ClosingAt)
	assert.True(t, tender.ClosingAt.Equal(time.Date(2025, 8, 20, 12, 0, 0, 0, testLoc)))

	require.NotNil(t, tender.BriefingAt)
	assert.True(t, tender.BriefingAt.Equal(time.Date(2025, 8, 14, 13, 0, 0, 0, testLoc)))

	require.NotNil(t, tender.TenderStartAt)
	assert.True(t, tender.TenderStartAt.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, testLoc)))

	require.NotNil(t, tender.BriefingVenue)
	assert.Contains(t, *tender.BriefingVenue, "Boardroom B")
	require.NotNil(t, tender.BriefingDetails)
	assert.Contains(t, *tender.BriefingDetails, "Briefing window ends at 14:00")

	// "short" is below the truncation threshold, so the prose wins
	require.NotNil(t, tender.Description)
	assert.Contains(t, *tender.Description, "N2 rehabilitation")

	require.Len(t, items[0].Contacts, 1)
	require.NotNil(t, items[0].Contacts[0].Email)
	assert.Equal(t, "jane@example.co.za", *items[0].Contacts[0].Email)
	require.NotNil(t, items[0].Contacts[0].Phone)
	assert.Equal(t, "011 555 1234", *items[0].Contacts[0].Phone)

	require.Len(t, items[0].Documents, 1)
	assert.Equal(t, "https://www.nra.co.za/docs/SANRAL-001.pdf", items[0].Documents[0].URL)
	require.NotNil(t, items[0].Documents[0].MimeType)
	assert.Equal(t, "application/pdf", *items[0].Documents[0].MimeType)
}

func TestSanralClosingRangeTakesEnd(t *testing.T) {
	raw := []byte(`[{
		"reference": "SANRAL-002",
		"details": {"rawText": "CLOSING TIME: 5 September 2025 10:00-11:00"}
	}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceSanral)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// A window on the closing line means the deadline is its end
	require.NotNil(t, items[0].Tender.ClosingAt)
	assert.True(t, items[0].Tender.ClosingAt.Equal(time.Date(2025, 9, 5, 11, 0, 0, 0, testLoc)))
}

func TestSanralCompulsoryBriefing(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"compulsory", "COMPULSORY BRIEFING: 14 August 2025 10:00", true},
		{"non-compulsory", "NON-COMPULSORY BRIEFING: 14 August 2025 10:00", false},
		{"unmarked", "BRIEFING: 14 August 2025 10:00", false},
	}

	n, _ := newTestRegistry().ForSource(domain.SourceSanral)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := []byte(`[{"reference": "S-1", "details": {"rawText": "` + tt.line + `"}}]`)
			items, err := n.Normalize(raw)
			require.NoError(t, err)
			require.Len(t, items, 1)
			require.NotNil(t, items[0].Tender.BriefingCompulsory)
			assert.Equal(t, tt.want, *items[0].Tender.BriefingCompulsory)
		})
	}
}

func TestSanralSubmissionAddress(t *testing.T) {
	raw := []byte(`[{
		"reference": "SANRAL-003",
		"details": {"rawText": "COMPLETION AND DELIVERY OF TENDER DOCUMENTS\nDocuments must be delivered to the offices of SANRAL\n58 Van Buuren Road\nBedfordview\n2008"}
	}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceSanral)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	addr := items[0].Tender.TenderBoxAddress
	require.NotNil(t, addr)
	assert.Contains(t, *addr, "offices of SANRAL")
	assert.Contains(t, *addr, "58 Van Buuren Road, Bedfordview, 2008")
}

func TestTransnetNormalize(t *testing.T) {
	raw := []byte(`[{
		"tenderNumber": "TRN-42",
		"description": "Supply of rail fasteners",
		"tenderCategory": "Goods",
		"locationOfService": "Gauteng",
		"institution": "Transnet Freight Rail",
		"dateAdvertised": "11/20/2025 8:00:00 AM",
		"closingDate": "12/12/2025 4:00:00 PM",
		"details": {
			"description": "Supply and delivery of rail fasteners to Sentrarand depot.",
			"briefingDate": "11/28/2025 10:00:00 AM",
			"briefingVenue": "Sentrarand depot main boardroom",
			"compulsoryBriefing": true,
			"contactPerson": "P. Ndlovu",
			"contactEmail": "p.ndlovu@transnet.net",
			"contactPhone": "011 584 0400",
			"documents": [
				{"url": "https://transnetetenders.azurewebsites.net/doc/1", "name": "RFQ.pdf", "mimeType": "application/pdf"},
				{"url": "", "name": "unlinked scan.pdf"}
			]
		}
	}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceTransnet)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	tender := items[0].Tender
	assert.Equal(t, "TRN-42", tender.ExternalID)
	require.NotNil(t, tender.Buyer)
	assert.Equal(t, "Transnet Freight Rail", *tender.Buyer)

	require.NotNil(t, tender.ClosingAt)
	assert.True(t, tender.ClosingAt.Equal(time.Date(2025, 12, 12, 16, 0, 0, 0, testLoc)))
	require.NotNil(t, tender.BriefingAt)
	assert.True(t, tender.BriefingAt.Equal(time.Date(2025, 11, 28, 10, 0, 0, 0, testLoc)))
	require.NotNil(t, tender.BriefingCompulsory)
	assert.True(t, *tender.BriefingCompulsory)

	// The detail description outranks the listing one
	require.NotNil(t, tender.Description)
	assert.Contains(t, *tender.Description, "Sentrarand depot")

	// Documents without a URL are dropped
	require.Len(t, items[0].Documents, 1)
	assert.Equal(t, "https://transnetetenders.azurewebsites.net/doc/1", items[0].Documents[0].URL)

	require.Len(t, items[0].Contacts, 1)
	require.NotNil(t, items[0].Contacts[0].Name)
	assert.Equal(t, "P. Ndlovu", *items[0].Contacts[0].Name)
}

func TestTransnetListingOnly(t *testing.T) {
	raw := []byte(`[{"tenderNumber": "TRN-7", "description": "Fencing", "closingDate": "1/5/2026 11:00:00 AM"}]`)

	n, _ := newTestRegistry().ForSource(domain.SourceTransnet)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NotNil(t, items[0].Tender.ClosingAt)
	assert.True(t, items[0].Tender.ClosingAt.Equal(time.Date(2026, 1, 5, 11, 0, 0, 0, testLoc)))
	assert.Empty(t, items[0].Contacts)
	assert.Empty(t, items[0].Documents)
}

func TestEtendersNormalize(t *testing.T) {
	raw := []byte(`{
		"data": [{
			"id": 12345,
			"tender_No": "RFQ-2025-88",
			"type": "Request for Quotation",
			"category": "Services: Professional",
			"description": "Appointment of a service provider",
			"province": "Western Cape",
			"organ_of_State": "Department of Transport",
			"status": "Published",
			"datePublished": "2025-07-01T08:00:00",
			"closing_Date": "2025-07-21T11:00:00",
			"compulsory_briefing_session": "Yes",
			"contactPerson": "S. Adams",
			"email": "s.adams@westerncape.gov.za",
			"telephone": "021 483 0000",
			"supportDocument": [
				{"supportDocumentID": "abc-123", "fileName": "terms.pdf"},
				{"supportDocumentID": "", "fileName": "nameless.doc"}
			]
		}]
	}`)

	n, _ := newTestRegistry().ForSource(domain.SourceEtenders)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	tender := items[0].Tender
	assert.Equal(t, "RFQ-2025-88", tender.ExternalID)
	require.NotNil(t, tender.SourceTenderID)
	assert.Equal(t, "12345", *tender.SourceTenderID)

	// Zoneless ISO timestamps pick up the configured offset
	require.NotNil(t, tender.ClosingAt)
	assert.True(t, tender.ClosingAt.Equal(time.Date(2025, 7, 21, 11, 0, 0, 0, testLoc)))
	require.NotNil(t, tender.BriefingCompulsory)
	assert.True(t, *tender.BriefingCompulsory)

	// Blob ids become download URLs; blank ids are dropped
	require.Len(t, items[0].Documents, 1)
	assert.Equal(t, "https://www.etenders.gov.za/Home/Download/?blobName=abc-123", items[0].Documents[0].URL)
	require.NotNil(t, items[0].Documents[0].MimeType)
	assert.Equal(t, "application/pdf", *items[0].Documents[0].MimeType)

	require.Len(t, items[0].Contacts, 1)
	require.NotNil(t, items[0].Contacts[0].Email)
	assert.Equal(t, "s.adams@westerncape.gov.za", *items[0].Contacts[0].Email)
}

func TestEtendersNormalizeOCDSReleases(t *testing.T) {
	raw := []byte(`{
		"releases": [{
			"ocid": "ocds-9gs2no-0001",
			"date": "2025-07-01T08:00:00",
			"buyer": {"name": "City of Cape Town"},
			"tender": {
				"id": "RFQ-2025-99",
				"title": "Supply of traffic signal controllers",
				"description": "Supply and delivery of controllers",
				"status": "active",
				"mainProcurementCategory": "goods",
				"procurementMethodDetails": "Request for Quotation",
				"value": {"amount": 1500000.50, "currency": "ZAR"},
				"tenderPeriod": {
					"startDate": "2025-07-01T08:00:00",
					"endDate": "2025-07-30T11:00:00"
				},
				"documents": [
					{"url": "https://www.etenders.gov.za/doc/99.pdf", "title": "RFQ document", "format": "application/pdf"},
					{"url": "", "title": "nameless"}
				],
				"contactPoint": {"name": "J. Dlamini", "email": "jd@capetown.gov.za"}
			}
		}]
	}`)

	n, _ := newTestRegistry().ForSource(domain.SourceEtenders)
	items, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)

	tender := items[0].Tender
	assert.Equal(t, "RFQ-2025-99", tender.ExternalID)
	require.NotNil(t, tender.SourceTenderID)
	assert.Equal(t, "ocds-9gs2no-0001", *tender.SourceTenderID)
	require.NotNil(t, tender.Buyer)
	assert.Equal(t, "City of Cape Town", *tender.Buyer)
	require.NotNil(t, tender.ClosingAt)
	assert.True(t, tender.ClosingAt.Equal(time.Date(2025, 7, 30, 11, 0, 0, 0, testLoc)))
	require.NotNil(t, tender.ProcurementMethodDetails)
	assert.Equal(t, "Request for Quotation", *tender.ProcurementMethodDetails)
	require.NotNil(t, tender.ValueAmount)
	assert.Equal(t, 1500000.50, *tender.ValueAmount)
	require.NotNil(t, tender.ValueCurrency)
	assert.Equal(t, "ZAR", *tender.ValueCurrency)
	assert.NotEmpty(t, tender.Hash)

	require.Len(t, items[0].Documents, 1)
	assert.Equal(t, "https://www.etenders.gov.za/doc/99.pdf", items[0].Documents[0].URL)

	require.Len(t, items[0].Contacts, 1)
	require.NotNil(t, items[0].Contacts[0].Email)
	assert.Equal(t, "jd@capetown.gov.za", *items[0].Contacts[0].Email)
}

func TestEtendersEmptyPage(t *testing.T) {
	n, _ := newTestRegistry().ForSource(domain.SourceEtenders)
	items, err := n.Normalize([]byte(`{"data": []}`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestIsDocumentURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/spec.pdf", true},
		{"https://example.com/spec.PDF?download=1", true},
		{"https://example.com/archive.zip", true},
		{"https://example.com/sheet.xlsx", true},
		{"https://drive.google.com/file/d/abc/view", true},
		{"https://www.dropbox.com/s/abc/file", true},
		{"https://example.com/tender/123", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, isDocumentURL(tt.url))
		})
	}
}
