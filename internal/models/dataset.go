package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// CODTag marks a common operational dataset. Matched exactly.
const CODTag = "common operational dataset - cod"

// ErrNoResources is returned when a dataset's first resource is requested
// but the dataset has none.
var ErrNoResources = errors.New("dataset has no resources")

// Dataset is a catalog entry as returned by CKAN package_search.
type Dataset struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Title               string        `json:"title"`
	MetadataCreated     string        `json:"metadata_created"`
	MetadataModified    string        `json:"metadata_modified"`
	LastModified        string        `json:"last_modified"`
	DatasetDate         string        `json:"dataset_date,omitempty"`
	DataUpdateFrequency string        `json:"data_update_frequency,omitempty"`
	Organization        *Organization `json:"organization,omitempty"`
	Tags                []Tag         `json:"tags,omitempty"`
	Private             *bool         `json:"private"`
	Archived            *bool         `json:"archived"`
	UpdatedByScript     string        `json:"updated_by_script,omitempty"`
	IsRequestDataType   bool          `json:"is_requestdata_type,omitempty"`
	TotalResDownloads   *int64        `json:"total_res_downloads,omitempty"`
	Resources           []Resource    `json:"resources,omitempty"`
}

// Organization owns datasets.
type Organization struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Tag is a free-text vocabulary term.
type Tag struct {
	Name string `json:"name"`
}

// Resource is a file or link attached to a dataset.
type Resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Validate checks that the fields the reports depend on are present.
func (d *Dataset) Validate() error {
	if d.ID == "" {
		return errors.New("id is required")
	}
	missing := make([]string, 0)
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.MetadataCreated == "" {
		missing = append(missing, "metadata_created")
	}
	if d.MetadataModified == "" {
		missing = append(missing, "metadata_modified")
	}
	if d.LastModified == "" {
		missing = append(missing, "last_modified")
	}
	if d.Private == nil {
		missing = append(missing, "private")
	}
	if d.Archived == nil {
		missing = append(missing, "archived")
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset %s: missing %s", d.ID, strings.Join(missing, ", "))
	}
	return nil
}

// IsScriptUpdated reports whether an automated process last touched the dataset.
func (d *Dataset) IsScriptUpdated() bool {
	return d.UpdatedByScript != ""
}

// IsRequestable reports whether the data is only available on request.
func (d *Dataset) IsRequestable() bool {
	return d.IsRequestDataType
}

// IsPrivate reports the private flag.
func (d *Dataset) IsPrivate() bool {
	return d.Private != nil && *d.Private
}

// IsArchived reports the archived flag.
func (d *Dataset) IsArchived() bool {
	return d.Archived != nil && *d.Archived
}

// OrganizationTitle returns the owning organization's title.
func (d *Dataset) OrganizationTitle() (string, bool) {
	if d.Organization == nil {
		return "", false
	}
	return d.Organization.Title, true
}

// TagNames returns tag names in catalog order.
func (d *Dataset) TagNames() []string {
	names := make([]string, len(d.Tags))
	for i, tag := range d.Tags {
		names[i] = tag.Name
	}
	return names
}

// HasTag reports whether name is one of the dataset's tags.
func (d *Dataset) HasTag(name string) bool {
	for _, tag := range d.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// IsCOD reports whether the dataset is tagged as a common operational dataset.
func (d *Dataset) IsCOD() bool {
	return d.HasTag(CODTag)
}

// FirstResourceURL returns the URL of the first resource.
func (d *Dataset) FirstResourceURL() (string, error) {
	if len(d.Resources) == 0 {
		return "", fmt.Errorf("dataset %s: %w", d.Name, ErrNoResources)
	}
	return d.Resources[0].URL, nil
}

// HDXURL returns the public page of the dataset on siteURL.
func (d *Dataset) HDXURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/dataset/" + d.Name
}

// DateOfDataset parses the temporal coverage. now stands in for the end of
// an ongoing range.
func (d *Dataset) DateOfDataset(now time.Time) (DateOfDataset, error) {
	date, err := ParseDateOfDataset(d.DatasetDate, now)
	if err != nil {
		return DateOfDataset{}, fmt.Errorf("dataset %s: %w", d.Name, err)
	}
	return date, nil
}
