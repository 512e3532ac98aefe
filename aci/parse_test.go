package aci

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func loadTenant(t *testing.T) *Tenant {
	t.Helper()
	data, err := os.ReadFile("testdata/tenant.json")
	require.NoError(t, err)
	tenant, err := Parse(data)
	require.NoError(t, err)
	return tenant
}

func TestParseCollections(t *testing.T) {
	tenant := loadTenant(t)

	assert.Equal(t, "Lab", tenant.Name)
	assert.Equal(t, Counts{AppProfiles: 2, EPGs: 5, Contracts: 3, Filters: 3, FilterActions: 4}, tenant.Counts)
	require.Len(t, tenant.AppProfiles, 2)

	web := tenant.AppProfiles[0].EPGs[0]
	assert.Equal(t, "App-Web", web.ID())
	assert.Equal(t, []string{"C1"}, web.Provided)
	assert.Equal(t, []string{"C2"}, web.Consumed)

	c2, ok := tenant.Contract("C2")
	require.True(t, ok)
	assert.Equal(t, []ContractRule{
		{Subject: "S2", BiDir: "no", Action: "permit", Filter: "F2"},
		{Subject: "S2", BiDir: "no", Action: "deny", Filter: "F3"},
	}, c2.Rules)

	f1, ok := tenant.Filter("F1")
	require.True(t, ok)
	require.Len(t, f1.Entries, 1)
	e := f1.Entries[0]
	assert.True(t, e.Protocol.IsTCP())
	assert.Equal(t, "80", e.FromPort.Name())
	assert.True(t, e.Stateful)

	f3, _ := tenant.Filter("F3")
	assert.True(t, f3.Entries[0].FromPort.IsAny())
	assert.Equal(t, "unspecified", f3.Entries[0].ToPort.String())

	_, ok = tenant.Filter("FX")
	assert.False(t, ok)
}

func TestParseCountersInvariant(t *testing.T) {
	tenant := loadTenant(t)

	var rules int
	for _, c := range tenant.Contracts {
		rules += len(c.Rules)
	}
	assert.Equal(t, tenant.Counts.FilterActions, rules)
	assert.NoError(t, tenant.Check())
}

func TestParseMissingAttribute(t *testing.T) {
	doc := `{"imdata":[{"fvTenant":{"attributes":{"name":"T"},"children":[
		{"vzFilter":{"attributes":{"name":"F"},"children":[
			{"vzEntry":{"attributes":{"name":"e","prot":"tcp","dFromPort":"80","stateful":"no"}}}
		]}}
	]}}]}`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `vzEntry: missing attribute "dToPort"`)
	assert.Contains(t, err.Error(), "filter F")
}

func TestParseInvalidDocument(t *testing.T) {
	_, err := Parse([]byte(`{"imdata":[`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"imdata":[]}`))
	assert.Error(t, err)
}

func TestDecodeNodeSkipsUnknownClasses(t *testing.T) {
	node, err := DecodeNode(gjson.Parse(`{"vnsAbsGraph":{"attributes":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, SkippedNode{class: "vnsAbsGraph"}, node)
	assert.Equal(t, "vnsAbsGraph", node.Class())

	node, err = DecodeNode(gjson.Parse(`{"vzBrCP":{"attributes":{"name":"C"}}}`))
	require.NoError(t, err)
	assert.Equal(t, ClassContract, node.Class())
	assert.Equal(t, "C", node.(ContractNode).Contract.Name)
}

func TestParseProtocol(t *testing.T) {
	assert.True(t, ParseProtocol("udp").IsUDP())
	assert.True(t, ParseProtocol("icmp").IsICMP())
	assert.True(t, ParseProtocol("unspecified").IsUnspecified())

	other := ParseProtocol("igmp")
	assert.False(t, other.IsTCP() || other.IsUDP() || other.IsICMP() || other.IsUnspecified())
	assert.Equal(t, "igmp", other.String())
}
