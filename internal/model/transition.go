package model

// Machine lists, per target status, the statuses an entity may enter it from.
// A status that appears in no source list is terminal.
type Machine map[string][]string

var (
	DemandMachine = Machine{
		DemandCancelled: {DemandPendingAssign, DemandPendingAccept},
	}
	OrderMachine = Machine{
		OrderCancelled: {OrderPendingPay, OrderPaid},
	}
	ExtensionMachine = Machine{
		ExtensionCancelled: {ExtensionPending},
		ExtensionConfirmed: {ExtensionPending},
		ExtensionRejected:  {ExtensionPending},
	}
)

func (m Machine) CanEnter(target, current string) bool {
	for _, from := range m[target] {
		if from == current {
			return true
		}
	}
	return false
}
