
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
	"github.com/golang/protobuf/ptypes/timestamp"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	pb "github.com/hyperledger/fabric-protos-go/peer"
)

//Chaincode由用户链码实现，对等节点为每个交易调用其中一个方法
type Chaincode interface {
//Init在链码实例化或升级时调用，用于初始化内部数据
	Init(stub ChaincodeStubInterface) pb.Response

//Invoke在交易中更新或查询账本，写入在交易提交后才生效
	Invoke(stub ChaincodeStubInterface) pb.Response
}

//ChaincodeStubInterface是链码访问和修改账本的句柄，
//每个交易一个实例
type ChaincodeStubInterface interface {
//GetArgs以字节数组形式返回Init或Invoke的参数
	GetArgs() [][]byte

//GetStringArgs以字符串形式返回参数
	GetStringArgs() []string

//GetFunctionAndParameters把第一个参数作为函数名，其余作为参数
	GetFunctionAndParameters() (string, []string)

//GetArgsSlice返回所有参数拼接后的字节
	GetArgsSlice() ([]byte, error)

	GetTxID() string

	GetChannelID() string

//InvokeChaincode在当前交易上下文中调用另一个链码。
//channel为空时使用调用者的通道。不同通道上的被调链码
//只返回响应，其读写集不进入本交易。
	InvokeChaincode(chaincodeName string, args [][]byte, channel string) pb.Response

//GetState返回已提交的键值，不读取本交易的写集。
//键不存在时返回(nil, nil)。
	GetState(key string) ([]byte, error)

//PutState把键值写入交易的写集。简单键不能为空，
//也不能以0x00开头，0x00是复合键的命名空间。
	PutState(key string, value []byte) error

	DelState(key string) error

//SetStateValidationParameter设置键级背书策略
	SetStateValidationParameter(key string, ep []byte) error

//GetStateValidationParameter读取键级背书策略，会在读集中记录该键
	GetStateValidationParameter(key string) ([]byte, error)

//GetStateByRange返回[startKey, endKey)上按字典序的迭代器，
//两端为空字符串表示不设边界。用完后调用Close。
	GetStateByRange(startKey, endKey string) (StateQueryIteratorInterface, error)

//GetStateByRangeWithPagination是分页的范围查询，bookmark取自
//上一页的QueryResponseMetadata，第一页传空字符串
	GetStateByRangeWithPagination(startKey, endKey string, pageSize int32,
		bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error)

//GetStateByPartialCompositeKey返回前缀匹配给定部分复合键的迭代器
	GetStateByPartialCompositeKey(objectType string, keys []string) (StateQueryIteratorInterface, error)

	GetStateByPartialCompositeKeyWithPagination(objectType string, keys []string,
		pageSize int32, bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error)

//CreateCompositeKey把对象类型和属性组合成复合键。
//各部分必须是合法的utf8，不能包含U+0000和U+10FFFF。
	CreateCompositeKey(objectType string, attributes []string) (string, error)

//SplitCompositeKey把复合键拆回对象类型和属性
	SplitCompositeKey(compositeKey string) (string, []string, error)

//GetQueryResult对支持富查询的状态数据库执行查询，
//查询在验证阶段不会重新执行
	GetQueryResult(query string) (StateQueryIteratorInterface, error)

	GetQueryResultWithPagination(query string, pageSize int32,
		bookmark string) (StateQueryIteratorInterface, *pb.QueryResponseMetadata, error)

//GetHistoryForKey返回键的历史修改，需要对等节点启用历史数据库
	GetHistoryForKey(key string) (HistoryQueryIteratorInterface, error)

//GetPrivateData从私有数据集合读取键值
	GetPrivateData(collection, key string) ([]byte, error)

//PutPrivateData把键值写入私有写集，提案响应里只有写集的哈希
	PutPrivateData(collection string, key string, value []byte) error

	DelPrivateData(collection, key string) error

	SetPrivateDataValidationParameter(collection, key string, ep []byte) error

	GetPrivateDataValidationParameter(collection, key string) ([]byte, error)

	GetPrivateDataByRange(collection, startKey, endKey string) (StateQueryIteratorInterface, error)

	GetPrivateDataByPartialCompositeKey(collection, objectType string, keys []string) (StateQueryIteratorInterface, error)

	GetPrivateDataQueryResult(collection, query string) (StateQueryIteratorInterface, error)

//GetCreator返回提交交易的客户端的序列化身份
	GetCreator() ([]byte, error)

//GetTransient返回提案中不写入账本的临时数据
	GetTransient() (map[string][]byte, error)

//GetBinding返回把应用数据绑定到提案的哈希，
//见protos/utils.ComputeProposalBinding
	GetBinding() ([]byte, error)

//GetDecorations返回对等节点附加的装饰数据
	GetDecorations() map[string][]byte

	GetSignedProposal() (*pb.SignedProposal, error)

//GetTxTimestamp返回客户端在通道头中设置的时间戳，
//同一交易的所有背书节点看到的值相同
	GetTxTimestamp() (*timestamp.Timestamp, error)

//SetEvent设置交易事件，提交后发给订阅的客户端
	SetEvent(name string, payload []byte) error
}

//CommonIteratorInterface是状态和历史迭代器共有的方法
type CommonIteratorInterface interface {
	HasNext() bool

//Close释放对等节点上的查询资源
	Close() error
}

type StateQueryIteratorInterface interface {
	CommonIteratorInterface

	Next() (*queryresult.KV, error)
}

type HistoryQueryIteratorInterface interface {
	CommonIteratorInterface

	Next() (*queryresult.KeyModification, error)
}

//MockQueryIteratorInterface供MockStub的范围查询使用
type MockQueryIteratorInterface interface {
	StateQueryIteratorInterface
}
