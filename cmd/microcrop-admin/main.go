// microcrop-admin is the operator console for the MicroCrop crop-insurance
// platform. Platform operators review organization KYB, watch platform-wide
// analytics and manage liquidity pools; organization operators manage their
// farmer roster, policies, payouts and staff.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
