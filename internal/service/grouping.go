package service

import (
	"sort"

	"rideshare/internal/domain"
)

// GroupKind classifies a logical ride group.
type GroupKind string

const (
	GroupSingle    GroupKind = "SINGLE"
	GroupRoundTrip GroupKind = "ROUND_TRIP"
	GroupSeries    GroupKind = "SERIES"
)

// RideGroup is a logical posting assembled from one or more ride rows:
// a standalone ride, a departure/return pair, or a recurring series.
type RideGroup struct {
	Kind  GroupKind
	Rides []*domain.Ride // Sorted by departure; round trips list the outbound leg first
}

// GroupRides collapses a flat ride list into logical groups. Rows
// sharing a group ID form a series when flagged recurring, a round trip
// when they are exactly an outbound/return pair, and degrade to singles
// otherwise (for example when one leg was cancelled and trimmed away by
// the caller). Groups come back ordered by earliest departure.
func GroupRides(rides []*domain.Ride) []RideGroup {
	var groups []RideGroup
	byGroup := make(map[string][]*domain.Ride)
	var groupOrder []string

	for _, ride := range rides {
		if !ride.InGroup() {
			groups = append(groups, RideGroup{Kind: GroupSingle, Rides: []*domain.Ride{ride}})
			continue
		}
		if _, seen := byGroup[ride.RoundTripGroupID]; !seen {
			groupOrder = append(groupOrder, ride.RoundTripGroupID)
		}
		byGroup[ride.RoundTripGroupID] = append(byGroup[ride.RoundTripGroupID], ride)
	}

	for _, groupID := range groupOrder {
		members := byGroup[groupID]
		sort.Slice(members, func(i, j int) bool {
			return members[i].DepartureAt.Before(members[j].DepartureAt)
		})

		switch {
		case isSeries(members):
			groups = append(groups, RideGroup{Kind: GroupSeries, Rides: members})
		case isRoundTrip(members):
			// Outbound first even if the legs were posted out of order.
			if members[0].IsReturnLeg {
				members[0], members[1] = members[1], members[0]
			}
			groups = append(groups, RideGroup{Kind: GroupRoundTrip, Rides: members})
		default:
			for _, ride := range members {
				groups = append(groups, RideGroup{Kind: GroupSingle, Rides: []*domain.Ride{ride}})
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Rides[0].DepartureAt.Before(groups[j].Rides[0].DepartureAt)
	})
	return groups
}

func isSeries(members []*domain.Ride) bool {
	for _, ride := range members {
		if ride.IsRecurring {
			return true
		}
	}
	return false
}

func isRoundTrip(members []*domain.Ride) bool {
	if len(members) != 2 {
		return false
	}
	return members[0].IsReturnLeg != members[1].IsReturnLeg
}

// EditScope is the user-selected breadth of a mutation against a group.
type EditScope string

const (
	ScopeSingle EditScope = "SINGLE"
	ScopeFuture EditScope = "FUTURE"
	ScopeAll    EditScope = "ALL"
)

// ValidScope reports whether scope is one of the known values.
func ValidScope(scope EditScope) bool {
	switch scope {
	case ScopeSingle, ScopeFuture, ScopeAll:
		return true
	}
	return false
}

// ResolveScope translates a scoped intent against a target ride into
// the concrete set of rows the mutation applies to. group must contain
// every row sharing the target's group ID (the target included); for
// ungrouped rides it may be nil.
//
// Standalone rides resolve to themselves for every scope. Round trips
// treat FUTURE as ALL: the pair stands or falls together once the
// selected leg is included. Series resolve SINGLE to the selected date,
// FUTURE to the selected date onward, and ALL to the whole series.
func ResolveScope(target *domain.Ride, group []*domain.Ride, scope EditScope) ([]*domain.Ride, error) {
	if !ValidScope(scope) {
		return nil, ErrInvalidScope
	}

	if !target.InGroup() {
		return []*domain.Ride{target}, nil
	}

	members := make([]*domain.Ride, 0, len(group))
	for _, ride := range group {
		if ride.RoundTripGroupID == target.RoundTripGroupID {
			members = append(members, ride)
		}
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].DepartureAt.Before(members[j].DepartureAt)
	})

	series := isSeries(members)

	switch scope {
	case ScopeSingle:
		return []*domain.Ride{target}, nil

	case ScopeFuture:
		if !series {
			return members, nil
		}
		var resolved []*domain.Ride
		for _, ride := range members {
			if !ride.DepartureAt.Before(target.DepartureAt) {
				resolved = append(resolved, ride)
			}
		}
		return resolved, nil

	default: // ScopeAll
		return members, nil
	}
}

// ActiveOnly filters a resolved row set down to ACTIVE rides.
func ActiveOnly(rides []*domain.Ride) []*domain.Ride {
	var active []*domain.Ride
	for _, ride := range rides {
		if ride.Status == domain.RideStatusActive {
			active = append(active, ride)
		}
	}
	return active
}
