package csvplugin

import (
	"fmt"

	"github.com/google/uuid"
)

// Metadata describes the plugin to hosts and to the version command.
type Metadata struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CompanyName   string    `json:"companyName"`
	Description   string    `json:"description"`
	Version       Version   `json:"version"`
	Namespace     string    `json:"namespace"`
	Authors       []string  `json:"authors"`
	Copyright     string    `json:"copyright"`
	RepositoryURL string    `json:"repositoryUrl"`
	ProjectURL    string    `json:"projectUrl"`
	Tags          []string  `json:"tags"`
	Category      string    `json:"category"`
}

// Version is a semantic version.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// PluginMetadata returns the metadata of this plugin.
func PluginMetadata() Metadata {
	return Metadata{
		ID:            uuid.MustParse("81c99765-9581-4f13-ba77-86c32ae21d97"),
		Name:          "Csv",
		CompanyName:   "FlowSynx",
		Description:   "Reads, projects and filters CSV data.",
		Version:       Version{Major: 1, Minor: 0, Patch: 0},
		Namespace:     "Connectors",
		Authors:       []string{"FlowSynx"},
		Copyright:     "© FlowSynx. All rights reserved.",
		RepositoryURL: "https://github.com/flowsynx/plugin-csv",
		ProjectURL:    "https://flowsynx.io",
		Tags:          []string{"flowSynx", "csv", "comma-separated-values", "data-platform", "bi-plugins"},
		Category:      "DataPlatformAndBI",
	}
}
