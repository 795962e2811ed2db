package parsing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("extractDate",
	func(lines []string, expected string) {
		date := extractDate(lines)
		if expected == "" {
			Expect(date).To(BeNil())
			return
		}
		Expect(date).To(HaveValue(Equal(expected)))
	},
	Entry("slash separated", []string{"Date: 01/02/2023"}, "01/02/2023"),
	Entry("dash separated with two-digit year", []string{"15-03-24 10:42"}, "15-03-24"),
	Entry("dot separated", []string{"Datum 24.12.2022"}, "24.12.2022"),
	Entry("year first", []string{"2023-01-15 12:00"}, "2023-01-15"),
	Entry("year first with slashes", []string{"Printed 2021/07/04"}, "2021/07/04"),
	Entry("first matching line wins", []string{"Shop", "01/01/2020", "02/02/2021"}, "01/01/2020"),
	Entry("day-month form preferred on the same line", []string{"12/11/10 2023-01-15"}, "12/11/10"),
	Entry("digits glued before the token", []string{"123/45/6789"}, ""),
	Entry("no date", []string{"Shop", "Total 4.00"}, ""),
	Entry("no lines", []string{}, ""),
)
