
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
/*
版权所有IBM公司。保留所有权利。

SPDX许可证标识符：Apache-2.0
**/
package shim

import (
	"sort"
	"strings"

	"github.com/golang/protobuf/ptypes"
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/google/uuid"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/pkg/errors"
)

var mockLogger = flogging.MustGetLogger("mock")

//MockStub是用于单元测试链码的ChaincodeStubInterface实现，
//状态保存在内存中，不需要对等节点
type MockStub struct {
//用存根调用的参数
	args [][]byte

//被测试的链码
	cc Chaincode

	Name string

//公共状态，Keys按字典序保存State中的所有键
	State map[string][]byte
	Keys  []string

//私有数据按集合保存，PvtKeys与Keys含义相同
	PvtState map[string]map[string][]byte
	PvtKeys  map[string][]string

//可从此MockStub调用的其他链码
	Invokables map[string]*MockStub

//当前交易的ID，交易之外为空
	TxID        string
	TxTimestamp *timestamp.Timestamp
	ChannelID   string

	signedProposal *pb.SignedProposal

//Creator和Transient在交易中原样返回给链码
	Creator   []byte
	Transient map[string][]byte

//键级背书策略，第一层是集合，第二层是键
	EndorsementPolicies map[string]map[string][]byte

//ChaincodeEvent是最近一次SetEvent设置的事件，
//同时发送到ChaincodeEventsChannel
	ChaincodeEvent         *pb.ChaincodeEvent
	ChaincodeEventsChannel chan *pb.ChaincodeEvent

	Decorations map[string][]byte
}

//NewMockStub创建带有空状态的MockStub
func NewMockStub(name string, cc Chaincode) *MockStub {
	mockLogger.Debugf("MockStub(%s)", name)
	return &MockStub{
		Name:                   name,
		cc:                     cc,
		State:                  map[string][]byte{},
		PvtState:               map[string]map[string][]byte{},
		PvtKeys:                map[string][]string{},
		EndorsementPolicies:    map[string]map[string][]byte{},
		Invokables:             map[string]*MockStub{},
		Transient:              map[string][]byte{},
		ChaincodeEventsChannel: make(chan *pb.ChaincodeEvent, 100),
		Decorations:            map[string][]byte{},
	}
}

func (stub *MockStub) GetTxID() string {
	return stub.TxID
}

func (stub *MockStub) GetChannelID() string {
	return stub.ChannelID
}

func (stub *MockStub) GetArgs() [][]byte {
	return stub.args
}

func (stub *MockStub) GetStringArgs() []string {
	strargs := make([]string, 0, len(stub.args))
	for _, barg := range stub.args {
		strargs = append(strargs, string(barg))
	}
	return strargs
}

func (stub *MockStub) GetFunctionAndParameters() (function string, params []string) {
	allargs := stub.GetStringArgs()
	params = []string{}
	if len(allargs) >= 1 {
		function = allargs[0]
		params = allargs[1:]
	}
	return
}

func (stub *MockStub) GetArgsSlice() ([]byte, error) {
	res := []byte{}
	for _, barg := range stub.args {
		res = append(res, barg...)
	}
	return res, nil
}

func (stub *MockStub) GetDecorations() map[string][]byte {
	return stub.Decorations
}

//MockTransactionStart开始一个模拟交易，txid为空时生成一个uuid。
//MockStub不支持并发交易。
func (stub *MockStub) MockTransactionStart(txid string) {
	if txid == "" {
		txid = uuid.New().String()
	}
	stub.TxID = txid
	stub.signedProposal = &pb.SignedProposal{}
	stub.TxTimestamp = ptypes.TimestampNow()
}

//MockTransactionEnd结束模拟交易
func (stub *MockStub) MockTransactionEnd(txid string) {
	stub.signedProposal = nil
	stub.TxID = ""
}

//MockPeerChaincode注册一个可以通过InvokeChaincode调用的链码，
//otherStub需要已经初始化
func (stub *MockStub) MockPeerChaincode(invokableChaincodeName string, otherStub *MockStub) {
	stub.Invokables[invokableChaincodeName] = otherStub
}

//MockInit在一个模拟交易中调用链码的Init
func (stub *MockStub) MockInit(txid string, args [][]byte) pb.Response {
	stub.args = args
	stub.MockTransactionStart(txid)
	res := stub.cc.Init(stub)
	stub.MockTransactionEnd(txid)
	return res
}

//MockInvoke在一个模拟交易中调用链码的Invoke
func (stub *MockStub) MockInvoke(txid string, args [][]byte) pb.Response {
	stub.args = args
	stub.MockTransactionStart(txid)
	res := stub.cc.Invoke(stub)
	stub.MockTransactionEnd(txid)
	return res
}

//MockInvokeWithSignedProposal与MockInvoke相同，但带有签名提案
func (stub *MockStub) MockInvokeWithSignedProposal(txid string, args [][]byte, sp *pb.SignedProposal) pb.Response {
	stub.args = args
	stub.MockTransactionStart(txid)
	stub.signedProposal = sp
	res := stub.cc.Invoke(stub)
	stub.MockTransactionEnd(txid)
	return res
}

//InvokeChaincode调用通过MockPeerChaincode注册的链码
func (stub *MockStub) InvokeChaincode(chaincodeName string, args [][]byte, channel string) pb.Response {
	if channel != "" {
		chaincodeName = chaincodeName + "/" + channel
	}
	otherStub, ok := stub.Invokables[chaincodeName]
	if !ok {
		return Error("chaincode " + chaincodeName + " is not registered with MockStub " + stub.Name)
	}
	mockLogger.Debugf("MockStub %s invoking peer chaincode %s", stub.Name, otherStub.Name)
	res := otherStub.MockInvoke(stub.TxID, args)
	mockLogger.Debugf("MockStub %s invoked peer chaincode %s, status %d", stub.Name, otherStub.Name, res.Status)
	return res
}

//-------状态------

func (stub *MockStub) GetState(key string) ([]byte, error) {
	return stub.State[key], nil
}

//PutState写入键值，空值等同于删除
func (stub *MockStub) PutState(key string, value []byte) error {
	if stub.TxID == "" {
		err := errors.New("cannot PutState without a transactions - call stub.MockTransactionStart()?")
		mockLogger.Errorf("%+v", err)
		return err
	}
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	if len(value) == 0 {
		return stub.DelState(key)
	}

	stub.State[key] = value
	stub.Keys = insertKey(stub.Keys, key)
	return nil
}

func (stub *MockStub) DelState(key string) error {
	delete(stub.State, key)
	stub.Keys = removeKey(stub.Keys, key)
	return nil
}

//GetStateByRange与ChaincodeStub一样，startKey为空时不包含复合键
func (stub *MockStub) GetStateByRange(startKey, endKey string) (StateQueryIteratorInterface, error) {
	if startKey == "" {
		startKey = emptyKeySubstitute
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, err
	}
	return NewMockStateRangeQueryIterator(stub, startKey, endKey), nil
}

func (stub *MockStub) GetStateByRangeWithPagination(startKey, endKey string, pageSize int32,
	bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	if startKey == "" {
		startKey = emptyKeySubstitute
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, nil, err
	}
	return stub.paginate(stub.State, stub.Keys, startKey, endKey, pageSize, bookmark)
}

func (stub *MockStub) GetStateByPartialCompositeKey(objectType string, attributes []string) (StateQueryIteratorInterface, error) {
	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, attributes)
	if err != nil {
		return nil, err
	}
	return NewMockStateRangeQueryIterator(stub, startKey, endKey), nil
}

func (stub *MockStub) GetStateByPartialCompositeKeyWithPagination(objectType string, keys []string,
	pageSize int32, bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, keys)
	if err != nil {
		return nil, nil, err
	}
	return stub.paginate(stub.State, stub.Keys, startKey, endKey, pageSize, bookmark)
}

//MockStub没有查询引擎
func (stub *MockStub) GetQueryResult(query string) (StateQueryIteratorInterface, error) {
	return nil, errors.New("not implemented")
}

func (stub *MockStub) GetQueryResultWithPagination(query string, pageSize int32,
	bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	return nil, nil, errors.New("not implemented")
}

func (stub *MockStub) GetHistoryForKey(key string) (HistoryQueryIteratorInterface, error) {
	return nil, errors.New("not implemented")
}

func (stub *MockStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
	return CreateCompositeKey(objectType, attributes)
}

func (stub *MockStub) SplitCompositeKey(compositeKey string) (string, []string, error) {
	return SplitCompositeKey(compositeKey)
}

//-------私有数据------

func (stub *MockStub) GetPrivateData(collection string, key string) ([]byte, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	return stub.PvtState[collection][key], nil
}

func (stub *MockStub) PutPrivateData(collection string, key string, value []byte) error {
	if collection == "" {
		return errors.New("collection must not be an empty string")
	}
	if key == "" {
		return errors.New("key must not be an empty string")
	}
	m, ok := stub.PvtState[collection]
	if !ok {
		m = map[string][]byte{}
		stub.PvtState[collection] = m
	}
	m[key] = value
	stub.PvtKeys[collection] = insertKey(stub.PvtKeys[collection], key)
	return nil
}

func (stub *MockStub) DelPrivateData(collection string, key string) error {
	if collection == "" {
		return errors.New("collection must not be an empty string")
	}
	delete(stub.PvtState[collection], key)
	stub.PvtKeys[collection] = removeKey(stub.PvtKeys[collection], key)
	return nil
}

func (stub *MockStub) GetPrivateDataByRange(collection, startKey, endKey string) (StateQueryIteratorInterface, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	if err := validateSimpleKeys(startKey, endKey); err != nil {
		return nil, err
	}
	return newMockIterator(stub.PvtState[collection], stub.PvtKeys[collection], startKey, endKey), nil
}

func (stub *MockStub) GetPrivateDataByPartialCompositeKey(collection, objectType string, attributes []string) (StateQueryIteratorInterface, error) {
	if collection == "" {
		return nil, errors.New("collection must not be an empty string")
	}
	startKey, endKey, err := createRangeKeysForPartialCompositeKey(objectType, attributes)
	if err != nil {
		return nil, err
	}
	return newMockIterator(stub.PvtState[collection], stub.PvtKeys[collection], startKey, endKey), nil
}

func (stub *MockStub) GetPrivateDataQueryResult(collection, query string) (StateQueryIteratorInterface, error) {
	return nil, errors.New("not implemented")
}

//-------背书策略------

func (stub *MockStub) SetStateValidationParameter(key string, ep []byte) error {
	return stub.SetPrivateDataValidationParameter("", key, ep)
}

func (stub *MockStub) GetStateValidationParameter(key string) ([]byte, error) {
	return stub.GetPrivateDataValidationParameter("", key)
}

func (stub *MockStub) SetPrivateDataValidationParameter(collection, key string, ep []byte) error {
	m, ok := stub.EndorsementPolicies[collection]
	if !ok {
		m = map[string][]byte{}
		stub.EndorsementPolicies[collection] = m
	}
	m[key] = ep
	return nil
}

func (stub *MockStub) GetPrivateDataValidationParameter(collection, key string) ([]byte, error) {
	return stub.EndorsementPolicies[collection][key], nil
}

//-------提案------

func (stub *MockStub) GetCreator() ([]byte, error) {
	return stub.Creator, nil
}

func (stub *MockStub) GetTransient() (map[string][]byte, error) {
	return stub.Transient, nil
}

//MockStub没有提案，绑定为空
func (stub *MockStub) GetBinding() ([]byte, error) {
	return nil, nil
}

func (stub *MockStub) GetSignedProposal() (*pb.SignedProposal, error) {
	return stub.signedProposal, nil
}

func (stub *MockStub) GetTxTimestamp() (*timestamp.Timestamp, error) {
	if stub.TxTimestamp == nil {
		return nil, errors.New("TxTimestamp not set.")
	}
	return stub.TxTimestamp, nil
}

func (stub *MockStub) SetEvent(name string, payload []byte) error {
	if name == "" {
		return errors.New("event name can not be nil string")
	}
	stub.ChaincodeEvent = &pb.ChaincodeEvent{EventName: name, Payload: payload}
	stub.ChaincodeEventsChannel <- stub.ChaincodeEvent
	return nil
}

//paginate返回bookmark（为空时从startKey）开始的至多pageSize个键，
//元数据中的Bookmark是下一页的起始键
func (stub *MockStub) paginate(state map[string][]byte, keys []string, startKey, endKey string, pageSize int32,
	bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
	if pageSize <= 0 {
		return nil, nil, errors.New("pageSize must be greater than zero")
	}
	if bookmark != "" {
		startKey = bookmark
	}

	inRange := keysInRange(keys, startKey, endKey)
	page := inRange
	nextBookmark := ""
	if len(inRange) > int(pageSize) {
		page = inRange[:pageSize]
		nextBookmark = inRange[pageSize]
	}

	iter := &MockStateRangeQueryIterator{state: state, keys: page, StartKey: startKey, EndKey: endKey}
	return iter, &pb.QueryResponseMetadata{FetchedRecordsCount: int32(len(page)), Bookmark: nextBookmark}, nil
}

func insertKey(keys []string, key string) []string {
	i := sort.SearchStrings(keys, key)
	if i < len(keys) && keys[i] == key {
		return keys
	}
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}

func removeKey(keys []string, key string) []string {
	i := sort.SearchStrings(keys, key)
	if i == len(keys) || keys[i] != key {
		return keys
	}
	return append(keys[:i], keys[i+1:]...)
}

//keysInRange返回[startKey, endKey)内的键，两端都为空表示全部键
func keysInRange(keys []string, startKey, endKey string) []string {
	var result []string
	for _, key := range keys {
		if key < startKey {
			continue
		}
		if endKey != "" && strings.Compare(key, endKey) >= 0 {
			break
		}
		result = append(result, key)
	}
	return result
}

/***********************
 范围查询迭代器
***********************/

//MockStateRangeQueryIterator在创建时对范围内的键做快照
type MockStateRangeQueryIterator struct {
	Closed   bool
	StartKey string
	EndKey   string

	state   map[string][]byte
	keys    []string
	current int
}

//NewMockStateRangeQueryIterator返回stub公共状态上[startKey, endKey)的迭代器
func NewMockStateRangeQueryIterator(stub *MockStub, startKey string, endKey string) *MockStateRangeQueryIterator {
	return newMockIterator(stub.State, stub.Keys, startKey, endKey)
}

func newMockIterator(state map[string][]byte, keys []string, startKey, endKey string) *MockStateRangeQueryIterator {
	mockLogger.Debugf("NewMockStateRangeQueryIterator(%q, %q)", startKey, endKey)
	return &MockStateRangeQueryIterator{
		state:    state,
		keys:     keysInRange(keys, startKey, endKey),
		StartKey: startKey,
		EndKey:   endKey,
	}
}

func (iter *MockStateRangeQueryIterator) HasNext() bool {
	if iter.Closed {
		mockLogger.Debug("HasNext() but already closed")
		return false
	}
	return iter.current < len(iter.keys)
}

func (iter *MockStateRangeQueryIterator) Next() (*queryresult.KV, error) {
	if iter.Closed {
		err := errors.New("MockStateRangeQueryIterator.Next() called after Close()")
		mockLogger.Errorf("%+v", err)
		return nil, err
	}
	if !iter.HasNext() {
		err := errors.New("MockStateRangeQueryIterator.Next() called when it does not HaveNext()")
		mockLogger.Errorf("%+v", err)
		return nil, err
	}

	key := iter.keys[iter.current]
	iter.current++
	return &queryresult.KV{Key: key, Value: iter.state[key]}, nil
}

func (iter *MockStateRangeQueryIterator) Close() error {
	if iter.Closed {
		err := errors.New("MockStateRangeQueryIterator.Close() called after Close()")
		mockLogger.Errorf("%+v", err)
		return err
	}
	iter.Closed = true
	return nil
}
