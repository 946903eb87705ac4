package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beeper/salesforce-tools/pkg/salesforce"
	"github.com/beeper/salesforce-tools/pkg/shared/toolspec"
)

var testDate = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

const (
	templateDocID     = "069XX0000004CchAAE"
	templateVersionID = "068XX0000004CchAAE"
	newVersionID      = "068XX0000004NewAAE"
	newDocumentID     = "069XX0000004NewAAE"
)

const testSlide = `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree>` +
	`<p:sp><p:txBody><a:p><a:r><a:t>Awarded to &lt;Company&gt;</a:t></a:r></a:p><a:p><a:r><a:t>&lt;Tier&gt; Partner</a:t></a:r></a:p></p:txBody></p:sp>` +
	`<p:sp><p:txBody><a:p><a:r><a:t>Valid through: 31 December 2024</a:t></a:r></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld></p:sld>`

func buildTemplate(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"[Content_Types].xml":   `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"ppt/presentation.xml":  `<p:presentation/>`,
		"ppt/slides/slide1.xml": testSlide,
	}
	for name, content := range entries {
		fw, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

// fakeOrg serves the handful of REST endpoints the tools touch.
type fakeOrg struct {
	template     []byte
	uploadStatus int    // 0 means 201 with a success body
	uploadBody   string // overrides the success body when set

	queries []string
	uploads []map[string]any
}

func (o *fakeOrg) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/services/data/v58.0/query":
		q := r.URL.Query().Get("q")
		o.queries = append(o.queries, q)
		switch {
		case strings.Contains(q, "ContentDocumentId = '"+templateDocID+"'"):
			fmt.Fprintf(w, `{"totalSize":1,"done":true,"records":[{"Id":"%s"}]}`, templateVersionID)
		case strings.Contains(q, "WHERE Id = '"+newVersionID+"'"):
			fmt.Fprintf(w, `{"totalSize":1,"done":true,"records":[{"ContentDocumentId":"%s"}]}`, newDocumentID)
		default:
			fmt.Fprint(w, `{"totalSize":0,"done":true,"records":[]}`)
		}
	case r.URL.Path == "/services/data/v58.0/sobjects/ContentVersion/"+templateVersionID+"/VersionData":
		w.Write(o.template)
	case r.URL.Path == "/services/data/v58.0/sobjects/ContentVersion" && r.Method == http.MethodPost:
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		o.uploads = append(o.uploads, payload)
		if o.uploadStatus != 0 {
			w.WriteHeader(o.uploadStatus)
			fmt.Fprint(w, `[{"message":"Storage limit exceeded","errorCode":"STORAGE_LIMIT_EXCEEDED"}]`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		if o.uploadBody != "" {
			fmt.Fprint(w, o.uploadBody)
			return
		}
		fmt.Fprintf(w, `{"id":"%s","success":true,"errors":[]}`, newVersionID)
	default:
		http.NotFound(w, r)
	}
}

func newFakeOrg(t *testing.T, template []byte) (*fakeOrg, *Executor) {
	t.Helper()
	org := &fakeOrg{template: template}
	srv := httptest.NewServer(org)
	t.Cleanup(srv.Close)

	set := NewToolSet(&salesforce.Config{
		InstanceURL: srv.URL,
		AccessToken: "test-token",
		TimeoutSecs: 5,
	}).WithClock(func() time.Time { return testDate })

	return org, NewExecutor(set.Registry(), AllowAllPolicy())
}

func resultFile(t *testing.T, result *Result) (string, []byte) {
	t.Helper()
	for _, block := range result.Content {
		if block.Type == "file" {
			data, err := base64.StdEncoding.DecodeString(block.Data)
			if err != nil {
				t.Fatalf("decoding file payload: %v", err)
			}
			return block.FileName, data
		}
	}
	t.Fatal("result has no file block")
	return "", nil
}

func slideContent(t *testing.T, archive []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "ppt/slides/slide1.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening slide: %v", err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("reading slide: %v", err)
		}
		return string(data)
	}
	t.Fatal("slide1.xml missing from archive")
	return ""
}

func TestDownloadFileTool(t *testing.T) {
	template := buildTemplate(t)
	org, exec := newFakeOrg(t, template)

	result, err := exec.Execute(context.Background(), toolspec.DownloadFileName, map[string]any{
		"file_id": templateDocID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	name, data := resultFile(t, result)
	if name != templateDocID {
		t.Fatalf("expected file named after the ID, got %q", name)
	}
	if !bytes.Equal(data, template) {
		t.Fatal("expected unmodified template bytes")
	}
	if result.Details["kind"] != "ContentDocument" || result.Details["record_id"] != templateVersionID {
		t.Fatalf("unexpected details: %+v", result.Details)
	}
	if len(org.queries) != 1 || !strings.Contains(org.queries[0], "IsLatest = true") {
		t.Fatalf("expected a latest-version lookup, got %v", org.queries)
	}
}

func TestDownloadFileToolUnknownIDFormat(t *testing.T) {
	org, exec := newFakeOrg(t, nil)

	result, err := exec.Execute(context.Background(), toolspec.DownloadFileName, map[string]any{
		"file_id": "123XX0000004CchAAE",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError() {
		t.Fatalf("expected error result, got %+v", result)
	}
	if !strings.HasPrefix(result.Error, "Error downloading file from Salesforce: ") {
		t.Fatalf("expected legacy error prefix, got %q", result.Error)
	}
	for _, prefix := range []string{"069", "068", "00P"} {
		if !strings.Contains(result.Error, prefix) {
			t.Fatalf("expected error to mention %s IDs, got %q", prefix, result.Error)
		}
	}
	if result.Details["code"] != salesforce.CodeUnknownIDFormat {
		t.Fatalf("unexpected error code: %+v", result.Details)
	}
	if len(org.queries) != 0 {
		t.Fatalf("expected no org traffic, got %v", org.queries)
	}
}

func TestDownloadFileToolMissingParam(t *testing.T) {
	_, exec := newFakeOrg(t, nil)

	result, err := exec.Execute(context.Background(), toolspec.DownloadFileName, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError() || !strings.Contains(result.Error, "file_id") {
		t.Fatalf("expected missing parameter result, got %+v", result)
	}
}

func TestPersonalizeTemplateTool(t *testing.T) {
	_, exec := newFakeOrg(t, buildTemplate(t))

	result, err := exec.Execute(context.Background(), toolspec.PersonalizeTemplateName, map[string]any{
		"file_id":      templateDocID,
		"company_name": "Globex Ltd",
		"tier":         "Platinum",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	name, data := resultFile(t, result)
	if name != "Partner_Plus_Certificate_Platinum_Globex_Ltd.pptx" {
		t.Fatalf("unexpected file name: %q", name)
	}

	slide := slideContent(t, data)
	if !strings.Contains(slide, "Awarded to Globex Ltd") {
		t.Fatalf("expected company substitution, got %s", slide)
	}
	if !strings.Contains(slide, "Platinum Partner") {
		t.Fatalf("expected tier substitution, got %s", slide)
	}
	if !strings.Contains(slide, "Valid through: 31 December 2026") {
		t.Fatalf("expected validity year refresh, got %s", slide)
	}
	if strings.Contains(slide, "Company&gt;") || strings.Contains(slide, "Tier&gt;") {
		t.Fatalf("expected placeholders to be gone, got %s", slide)
	}

	if result.Details["company_replacements"] != 1 || result.Details["tier_replacements"] != 1 || result.Details["date_replacements"] != 1 {
		t.Fatalf("unexpected replacement counts: %+v", result.Details)
	}
	if result.Details["valid_through"] != "31 December 2026" {
		t.Fatalf("unexpected valid_through detail: %+v", result.Details)
	}
}

func TestPersonalizeTemplateToolDefaults(t *testing.T) {
	_, exec := newFakeOrg(t, buildTemplate(t))

	result, err := exec.Execute(context.Background(), toolspec.PersonalizeTemplateName, map[string]any{
		"file_id": templateDocID,
	})
	if err != nil || !result.IsSuccess() {
		t.Fatalf("expected success, got %+v err %v", result, err)
	}

	name, data := resultFile(t, result)
	if name != "Partner_Plus_Certificate_Gold_Acme_Corporation.pptx" {
		t.Fatalf("expected default-derived file name, got %q", name)
	}
	slide := slideContent(t, data)
	if !strings.Contains(slide, "Awarded to Acme Corporation") || !strings.Contains(slide, "Gold Partner") {
		t.Fatalf("expected default substitutions, got %s", slide)
	}
}

func TestPersonalizeTemplateToolBadTemplate(t *testing.T) {
	_, exec := newFakeOrg(t, []byte("this is not a deck"))

	result, err := exec.Execute(context.Background(), toolspec.PersonalizeTemplateName, map[string]any{
		"file_id": templateDocID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError() {
		t.Fatalf("expected error result, got %+v", result)
	}
	if !strings.HasPrefix(result.Error, "Error processing file from Salesforce: ") {
		t.Fatalf("expected legacy error prefix, got %q", result.Error)
	}
	if result.Details["code"] != codeTemplate {
		t.Fatalf("unexpected error code: %+v", result.Details)
	}
}

func TestPublishCertificateTool(t *testing.T) {
	org, exec := newFakeOrg(t, buildTemplate(t))

	result, err := exec.Execute(context.Background(), toolspec.PublishCertificateName, map[string]any{
		"file_id":      templateDocID,
		"company_name": "Globex Ltd",
		"tier":         "Platinum",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	if len(org.uploads) != 1 {
		t.Fatalf("expected one upload, got %d", len(org.uploads))
	}
	upload := org.uploads[0]
	if upload["Title"] != "Partner_Plus_Certificate_Platinum_Globex_Ltd" {
		t.Fatalf("unexpected upload title: %v", upload["Title"])
	}
	if upload["PathOnClient"] != "Partner_Plus_Certificate_Platinum_Globex_Ltd.pptx" {
		t.Fatalf("unexpected PathOnClient: %v", upload["PathOnClient"])
	}
	if upload["IsMajorVersion"] != true {
		t.Fatalf("expected major version upload, got %v", upload["IsMajorVersion"])
	}
	if _, ok := upload["ContentDocumentId"]; ok {
		t.Fatal("expected a fresh document, not a new version of an existing one")
	}

	_, returned := resultFile(t, result)
	sent, err := base64.StdEncoding.DecodeString(upload["VersionData"].(string))
	if err != nil {
		t.Fatalf("decoding uploaded payload: %v", err)
	}
	if !bytes.Equal(sent, returned) {
		t.Fatal("expected uploaded bytes to match returned bytes")
	}

	if result.Details["uploaded"] != true || result.Details["version_id"] != newVersionID || result.Details["document_id"] != newDocumentID {
		t.Fatalf("unexpected details: %+v", result.Details)
	}
	if !strings.Contains(result.Text(), newVersionID) || !strings.Contains(result.Text(), newDocumentID) {
		t.Fatalf("expected summary to report upload IDs, got %q", result.Text())
	}
}

func TestPublishCertificateToolSkipsUpload(t *testing.T) {
	org, exec := newFakeOrg(t, buildTemplate(t))

	result, err := exec.Execute(context.Background(), toolspec.PublishCertificateName, map[string]any{
		"file_id":                   templateDocID,
		"upload_back_to_salesforce": false,
	})
	if err != nil || !result.IsSuccess() {
		t.Fatalf("expected success, got %+v err %v", result, err)
	}
	if len(org.uploads) != 0 {
		t.Fatalf("expected no upload, got %d", len(org.uploads))
	}
	if result.Details["uploaded"] != false {
		t.Fatalf("expected uploaded=false detail, got %+v", result.Details)
	}
	if _, data := resultFile(t, result); len(data) == 0 {
		t.Fatal("expected personalized file even without upload")
	}
}

func TestPublishCertificateToolCustomTitle(t *testing.T) {
	org, exec := newFakeOrg(t, buildTemplate(t))

	result, err := exec.Execute(context.Background(), toolspec.PublishCertificateName, map[string]any{
		"file_id": templateDocID,
		"title":   "Quarterly_Review_Deck",
	})
	if err != nil || !result.IsSuccess() {
		t.Fatalf("expected success, got %+v err %v", result, err)
	}
	if org.uploads[0]["Title"] != "Quarterly_Review_Deck" {
		t.Fatalf("expected custom title to pass through unchanged, got %v", org.uploads[0]["Title"])
	}
	if name, _ := resultFile(t, result); name != "Quarterly_Review_Deck.pptx" {
		t.Fatalf("unexpected file name: %q", name)
	}
}

func TestPublishCertificateToolUploadRejected(t *testing.T) {
	template := buildTemplate(t)
	org, exec := newFakeOrg(t, template)
	org.uploadStatus = http.StatusInternalServerError

	result, err := exec.Execute(context.Background(), toolspec.PublishCertificateName, map[string]any{
		"file_id": templateDocID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError() {
		t.Fatalf("expected error result, got %+v", result)
	}
	if !strings.HasPrefix(result.Error, "Error processing file from Salesforce: ") {
		t.Fatalf("expected legacy error prefix, got %q", result.Error)
	}
	if result.Details["code"] != salesforce.CodeUpload {
		t.Fatalf("unexpected error code: %+v", result.Details)
	}
}

func TestToolSetLegacyAliases(t *testing.T) {
	set := NewToolSet(&salesforce.Config{InstanceURL: "https://example.my.salesforce.com", AccessToken: "x"})
	reg := set.Registry()

	aliases := map[string]string{
		"salesforce_simple":  toolspec.DownloadFileName,
		"salesforce_replace": toolspec.PersonalizeTemplateName,
		"salesforce_upload":  toolspec.PublishCertificateName,
	}
	for alias, canonical := range aliases {
		tool := reg.Get(alias)
		if tool == nil || tool.Name != canonical {
			t.Fatalf("expected %s to resolve to %s, got %+v", alias, canonical, tool)
		}
	}

	if len(reg.ToolsInGroup(GroupSalesforce)) != 3 {
		t.Fatalf("expected 3 tools in %s, got %v", GroupSalesforce, reg.ToolsInGroup(GroupSalesforce))
	}
}

func TestDynamicTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		company string
		tier    string
		want    string
	}{
		{name: "stock title", title: toolspec.DefaultTitle, company: "Acme Corporation", tier: "Gold", want: "Partner_Plus_Certificate_Gold_Acme_Corporation"},
		{name: "slash in company", title: toolspec.DefaultTitle, company: "A/S Nordic", tier: "Silver", want: "Partner_Plus_Certificate_Silver_A_S_Nordic"},
		{name: "custom title untouched", title: "Partner_Plus_Certificate_Platinum", company: "Acme", tier: "Gold", want: "Partner_Plus_Certificate_Platinum"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := dynamicTitle(tc.title, tc.company, tc.tier); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
