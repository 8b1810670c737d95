package hardware_test

import (
	"github.com/frahmantamala/hardware-marketplace/internal/hardware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("CanList", func() {
	It("allows hardware without a storage list", func() {
		d := hardware.CanList(hardware.Specs{Ports: "48x 1GbE"})
		Expect(d.Allowed).To(BeTrue())
		Expect(d.Reason).To(BeEmpty())
	})

	It("allows hardware with an empty storage list", func() {
		d := hardware.CanList(hardware.Specs{Storage: []string{}})
		Expect(d.Allowed).To(BeTrue())
	})

	It("blocks hardware that still carries media and explains how to fix it", func() {
		d := hardware.CanList(hardware.Specs{Storage: []string{"4x 1.2TB SAS HDD", "2x 960GB SATA SSD"}})
		Expect(d.Allowed).To(BeFalse())
		Expect(d.Media).To(ConsistOf("4x 1.2TB SAS HDD", "2x 960GB SATA SSD"))
		Expect(d.Reason).To(ContainSubstring("4x 1.2TB SAS HDD, 2x 960GB SATA SSD"))
		Expect(d.Reason).To(ContainSubstring("1. Remove all storage media"))
		Expect(d.Reason).To(ContainSubstring("2. Ensure drives are sent through secure decommission process"))
		Expect(d.Reason).To(ContainSubstring("3. Re-list the hardware once storage is removed"))
	})

	It("blocks exactly the two reference devices that carry drives", func() {
		var blocked []string
		for _, r := range hardware.ReferenceInventory() {
			if !hardware.CanList(r.Specs).Allowed {
				blocked = append(blocked, r.SerialNumber)
			}
		}
		Expect(blocked).To(ConsistOf("SRV-DELL-R740-001", "STG-NETAPP-FAS2650-001"))
	})
})
