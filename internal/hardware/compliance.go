package hardware

import (
	"fmt"
	"strings"
)

// Decision is the outcome of the storage-media compliance check.
type Decision struct {
	Allowed bool     `json:"allowed"`
	Reason  string   `json:"reason,omitempty"`
	Media   []string `json:"media,omitempty"`
}

// CanList applies the storage-media policy: hardware that still carries any
// storage media may not be listed.
func CanList(specs Specs) Decision {
	if len(specs.Storage) == 0 {
		return Decision{Allowed: true}
	}
	media := make([]string, len(specs.Storage))
	copy(media, specs.Storage)
	return Decision{
		Allowed: false,
		Reason:  StorageBlockMessage(media),
		Media:   media,
	}
}

func StorageBlockMessage(media []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "This hardware contains storage media: %s.\n\n", strings.Join(media, ", "))
	b.WriteString("Per corporate security policy, hardware with storage media cannot be transferred through the marketplace.\n\n")
	b.WriteString("Please:\n")
	b.WriteString("1. Remove all storage media (HDDs, SSDs) from the hardware\n")
	b.WriteString("2. Ensure drives are sent through secure decommission process\n")
	b.WriteString("3. Re-list the hardware once storage is removed\n\n")
	b.WriteString("If this is a storage system that cannot have drives removed, it must go through the standard decommission process.")
	return b.String()
}
