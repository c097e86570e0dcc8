// Command datagen writes a synthetic transaction CSV with known fraud
// patterns planted in a background of ordinary transfers, for exercising
// the analysis pipeline end to end.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

type generator struct {
	rng   *rand.Rand
	w     *csv.Writer
	base  time.Time
	txnID int
}

func main() {
	var (
		out        = flag.String("out", "transactions.csv", "Output CSV path")
		accounts   = flag.Int("accounts", 200, "Number of background accounts")
		background = flag.Int("background", 2000, "Number of background transfers")
		cycles     = flag.Int("cycles", 2, "Number of planted cycles")
		fanIns     = flag.Int("fan-ins", 1, "Number of planted fan-in collectors")
		fanOuts    = flag.Int("fan-outs", 1, "Number of planted fan-out distributors")
		chains     = flag.Int("chains", 1, "Number of planted layering chains")
		seed       = flag.Int64("seed", 42, "RNG seed; identical seeds produce identical files")
	)
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	g := &generator{
		rng:  rand.New(rand.NewSource(*seed)),
		w:    csv.NewWriter(f),
		base: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	g.w.Write([]string{"transaction_id", "sender_id", "receiver_id", "amount", "timestamp"})

	for i := 0; i < *background; i++ {
		from := fmt.Sprintf("ACC_%04d", g.rng.Intn(*accounts))
		to := fmt.Sprintf("ACC_%04d", g.rng.Intn(*accounts))
		if from == to {
			continue
		}
		g.emit(from, to, 10+g.rng.Float64()*990)
	}

	for i := 0; i < *cycles; i++ {
		g.plantCycle(i, 3+g.rng.Intn(3))
	}
	for i := 0; i < *fanIns; i++ {
		g.plantFanIn(i, 12+g.rng.Intn(8))
	}
	for i := 0; i < *fanOuts; i++ {
		g.plantFanOut(i, 12+g.rng.Intn(8))
	}
	for i := 0; i < *chains; i++ {
		g.plantChain(i, 5+g.rng.Intn(3))
	}

	g.w.Flush()
	if err := g.w.Error(); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
	fmt.Printf("wrote %d transactions to %s\n", g.txnID, *out)
}

func (g *generator) emit(from, to string, amount float64) {
	ts := g.base.Add(time.Duration(g.rng.Intn(30*24*3600)) * time.Second)
	g.w.Write([]string{
		fmt.Sprintf("TXN_%06d", g.txnID),
		from,
		to,
		fmt.Sprintf("%.2f", amount),
		ts.Format(time.RFC3339),
	})
	g.txnID++
}

// plantCycle routes a round sum through n dedicated accounts and back.
func (g *generator) plantCycle(id, n int) {
	amount := 5000 + g.rng.Float64()*5000
	for i := 0; i < n; i++ {
		from := fmt.Sprintf("CYCLE%d_%02d", id, i)
		to := fmt.Sprintf("CYCLE%d_%02d", id, (i+1)%n)
		g.emit(from, to, amount*(0.95+g.rng.Float64()*0.05))
	}
}

// plantFanIn sends many small amounts from mules into one collector.
func (g *generator) plantFanIn(id, senders int) {
	collector := fmt.Sprintf("COLLECT%d", id)
	for i := 0; i < senders; i++ {
		g.emit(fmt.Sprintf("MULE%d_%02d", id, i), collector, 100+g.rng.Float64()*400)
	}
}

// plantFanOut splits one balance across many recipients.
func (g *generator) plantFanOut(id, recipients int) {
	distributor := fmt.Sprintf("DISTRIB%d", id)
	for i := 0; i < recipients; i++ {
		g.emit(distributor, fmt.Sprintf("RECIP%d_%02d", id, i), 100+g.rng.Float64()*400)
	}
}

// plantChain forwards funds hop by hop through shell intermediaries.
func (g *generator) plantChain(id, hops int) {
	amount := 8000 + g.rng.Float64()*4000
	for i := 0; i < hops; i++ {
		from := fmt.Sprintf("CHAIN%d_%02d", id, i)
		to := fmt.Sprintf("CHAIN%d_%02d", id, i+1)
		g.emit(from, to, amount*(0.97+g.rng.Float64()*0.02))
	}
}
