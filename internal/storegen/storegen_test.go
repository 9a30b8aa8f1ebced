package storegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdgen/internal/buffer"
	"mdgen/internal/model"
	"mdgen/internal/writer"
)

func referentModel() *model.Model {
	referent := &model.Object{ID: "referent", Name: "Referent", Attributes: []*model.Attribute{
		{Name: "name", Type: model.Type{Kind: model.TypeString}},
	}}
	return &model.Model{Name: "one_to_many_vec", Objects: []*model.Object{referent}}
}

func render(t *testing.T, flavor model.StorageFlavor, m *model.Model) string {
	t.Helper()
	buf := buffer.New()
	err := Writer{}.WriteCode(writer.Context{Model: m, Flavor: flavor}, buf)
	require.NoError(t, err)
	return buf.String()
}

func TestHashOwnedMethods(t *testing.T) {
	out := render(t, model.FlavorHashOwned, referentModel())
	assert.Contains(t, out, "referent: HashMap<Uuid, Referent>,")
	assert.Contains(t, out, "pub fn inter_referent(&mut self, referent: Referent) {")
	assert.Contains(t, out, "pub fn exhume_referent(&self, id: &Uuid) -> Option<&Referent> {")
	assert.Contains(t, out, "pub fn exorcise_referent(&mut self, id: &Uuid) -> Option<Referent> {")
	assert.Contains(t, out, "pub fn iter_referent(&self) -> impl Iterator<Item = &Referent> {")
	assert.NotContains(t, out, "SystemTime")
}

func TestHashOwnedTimestampedEmitsAccessor(t *testing.T) {
	out := render(t, model.FlavorHashOwnedTimestamped, referentModel())
	assert.Contains(t, out, "referent: HashMap<Uuid, (Referent, SystemTime)>,")
	assert.Contains(t, out, "pub fn referent_timestamp(&self, referent: &Referent) -> SystemTime {")
}

func TestHashSharedMultiThreadWrapsRwLock(t *testing.T) {
	out := render(t, model.FlavorHashSharedMultiThread, referentModel())
	assert.Contains(t, out, "referent: Arc<RwLock<HashMap<Uuid, Arc<RwLock<Referent>>>>>,")
	assert.Contains(t, out, "self.referent.write().unwrap().insert(id, referent.clone());")
}

func TestVectorFlavorFreeListAndDuplicateElision(t *testing.T) {
	out := render(t, model.FlavorVecSingleThread, referentModel())
	assert.Contains(t, out, "referent_free_list: Vec<usize>,")
	assert.Contains(t, out, "referent: Vec<Option<Rc<RefCell<Referent>>>>,")
	assert.Contains(t, out, "fn inter_referent<F>(&mut self, referent: F) -> Rc<RefCell<Referent>>")
	assert.Contains(t, out, "self.referent_free_list.push(_index);")
	assert.Contains(t, out, "*stored.borrow() == *referent.borrow()")
}

func TestVectorMultiThreadUsesMutexFreeList(t *testing.T) {
	out := render(t, model.FlavorVecMultiThread, referentModel())
	assert.Contains(t, out, "referent_free_list: Mutex<Vec<usize>>,")
	assert.Contains(t, out, "self.referent_free_list.lock().unwrap()")
}

func TestPersistenceEmitsBincodeAndJSONDirectory(t *testing.T) {
	out := render(t, model.FlavorHashOwned, referentModel())
	assert.Contains(t, out, "pub fn persist_bincode<P: AsRef<Path>>(&self, path: P) -> io::Result<()> {")
	assert.Contains(t, out, "pub fn load_bincode<P: AsRef<Path>>(path: P) -> io::Result<Self> {")
	assert.Contains(t, out, "pub fn persist<P: AsRef<Path>>(&self, path: P) -> io::Result<()> {")
	assert.Contains(t, out, "always rewrite live instances and do")
}

func TestPersistenceTimestampedPrunesStaleFiles(t *testing.T) {
	out := render(t, model.FlavorHashOwnedTimestamped, referentModel())
	assert.Contains(t, out, "if !live.contains(&id) {")
	assert.Contains(t, out, "fs::remove_file(entry.path());")
}

func nakedObjectModel() *model.Model {
	singleton := &model.Object{ID: "unattached", Name: "Unattached"}
	return &model.Model{Name: "singleton_demo", Objects: []*model.Object{singleton}}
}

func TestSingletonIsInternedDirectlyForHashOwned(t *testing.T) {
	out := render(t, model.FlavorHashOwned, nakedObjectModel())
	assert.Contains(t, out, "store.unattached.insert(UNATTACHED_ID, Unattached);")
}

func TestSingletonIsInternedThroughRwlockWrapperForSharedMultiThread(t *testing.T) {
	out := render(t, model.FlavorHashSharedMultiThread, nakedObjectModel())
	assert.Contains(t, out, "store.unattached.insert(UNATTACHED_ID, Arc::new(RwLock::new(Unattached)));")
}

func TestSingletonIsNotAutoInternedForVectorFlavor(t *testing.T) {
	out := render(t, model.FlavorVecSingleThread, nakedObjectModel())
	assert.NotContains(t, out, "store.unattached.insert")
	assert.Contains(t, out, "cannot be auto-interned")
}

func TestStoreIsBracketedInIgnoreOrigRegions(t *testing.T) {
	out := render(t, model.FlavorHashOwned, referentModel())
	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "ignore-orig")
}
