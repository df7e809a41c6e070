// Package coordination provides the Broker, the single entry point sessions
// use to hand work to each other through a shared coordination directory.
//
// A Broker wires together the pieces that live in their own packages:
//
//	store  → queue, plan, result, signal, retention
//
// and publishes an event on its bus after every successful mutation, so
// observers (notifications, the event log) can react without the broker
// depending on them.
//
// Usage:
//
//	b := coordination.New(projectRoot, coordination.WithLogger(logger))
//
//	path, err := b.CreateTestPlan(store.Payload{"feature": "login"})
//	if err != nil {
//	    return err
//	}
//	_ = b.SendSignal("testing", store.Payload{"type": "new_test_plan", "plan_file": path})
//
//	// In the testing session:
//	if sig, ok := b.ReceiveSignal("testing"); ok {
//	    file, _ := sig.DataString("plan_file")
//	    p, _ := b.Plans().Get(file)
//	    ...
//	}
//
// Every operation is synchronous and touches only the filesystem. Missing
// or corrupt documents read as absent; mutations report failure with a
// false or an error instead of panicking.
package coordination
