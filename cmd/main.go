package main

import (
	"fmt"
	"log"

	"github.com/nbiotcloud/ucdp"
)

func main() {
	// an 8 bit counter with an enable input
	counter := &ucdp.ModSpec{
		Name:  "counter",
		Title: "8 Bit Counter",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.ClkRstAnType(), "")
			m.AddPort(ucdp.BitType(), "ena_i")
			m.AddPort(ucdp.UintType(8), "count_o")
			m.AddSignal(ucdp.UintType(8), "count_r")
			ff := m.AddFlipFlop(ucdp.WithEna("ena_i"))
			ff.Set("count_r", "count_r + 8'd1")
			m.Assign("count_o", "count_r")
		},
	}

	top := &ucdp.ModSpec{
		Name:  "top",
		Title: "Demo Top",
		Build: func(m *ucdp.Module) {
			m.AddPort(ucdp.ClkRstAnType(), "")
			m.AddPort(ucdp.BitType(), "ena_i")
			m.AddPort(ucdp.UintType(8), "count_o")
			m.Add(counter, "u_counter")
			m.Route("u_counter/ena_i", "ena_i")
			m.Route("count_o", "u_counter/count_o")
		},
	}

	m, err := ucdp.NewTop(top)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(ucdp.Overview(m))
}
