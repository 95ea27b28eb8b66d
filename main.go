// Demo connecting to a CardOS 5 card over PC/SC: identify the generation
// from the ATR, select the MF and print the parsed file metadata and ACL.
package main

import (
	"fmt"
	"log"

	"github.com/ebfe/scard"

	"github.com/cardkit/cardos5/pkg/cardos5"
	"github.com/cardkit/cardos5/pkg/tlv"
)

func main() {
	ctx, card := connectToCard()

	defer func() {
		if err := ctx.Release(); err != nil {
			log.Printf("Warning: Failed to release context: %v", err)
		}
	}()

	defer func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			log.Printf("Warning: Failed to disconnect card: %v", err)
		}
	}()

	status, err := card.Status()
	if err != nil {
		log.Fatalf("Error reading card status: %s", err)
	}

	cardType := cardos5.MatchATR(status.Atr)
	if cardType == cardos5.CardUnknown {
		log.Fatalf("Not a CardOS 5 card (ATR % X)", status.Atr)
	}
	fmt.Printf(">> Detected %s\n", cardType)

	c, err := cardos5.NewCard(card, cardType)
	if err != nil {
		log.Fatalf("Error setting up card: %s", err)
	}

	fmt.Println("\n=============================================")
	fmt.Println(" SELECT MF (3F00)")
	fmt.Println("=============================================")

	mf, err := c.Select([]byte{0x3F, 0x00})
	if err != nil {
		log.Fatalf("Error selecting MF: %s", err)
	}

	fmt.Printf("File %04X: type=%v size=%d\n", mf.ID, mf.Type, mf.Size)
	if len(mf.Name) > 0 {
		fmt.Printf("Name: %q\n", mf.Name)
	}

	fmt.Println("\nAccess conditions:")
	for _, e := range mf.ACLEntries() {
		switch e.Cond.Method {
		case cardos5.UserAuth:
			fmt.Printf("  %-10s PIN %d\n", e.Op, e.Cond.KeyRef)
		case cardos5.Always:
			fmt.Printf("  %-10s always\n", e.Op)
		default:
			fmt.Printf("  %-10s never\n", e.Op)
		}
	}

	fmt.Println("\nFile control information:")
	fmt.Println(tlv.Describe(mf.FCI))

	fmt.Println("\n>> Demo Finished Successfully")
}

// connectToCard handles the PC/SC context establishment and reader connection.
func connectToCard() (*scard.Context, *scard.Card) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		log.Fatalf("Error establishing context: %s", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		if relErr := ctx.Release(); relErr != nil {
			log.Printf("Warning: Failed to release context during error handling: %v", relErr)
		}
		log.Fatal("No smart card reader found.")
	}

	fmt.Printf(">> Using reader: %s\n", readers[0])

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(readers[0], scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		if relErr := ctx.Release(); relErr != nil {
			log.Printf("Warning: Failed to release context during error handling: %v", relErr)
		}
		log.Fatalf("Error connecting to card: %s", err)
	}

	return ctx, card
}
